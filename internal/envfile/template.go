package envfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// TemplateFileSuffix marks a file as an environment template.
	TemplateFileSuffix = "-envs.EXAMPLE"

	exampleExtensionConstant           = ".EXAMPLE"
	notTemplateMessageConstant         = "file is not an environment template"
	notTemplateErrorTemplateConstant   = "%w: %s"
	parseTemplateErrorTemplateConstant = "parse environment template %s: %w"
)

// ErrNotTemplate indicates a path lacks the template suffix.
var ErrNotTemplate = errors.New(notTemplateMessageConstant)

// Template is a parsed environment template.
type Template struct {
	SourcePath string
	// Name is the file name without the .EXAMPLE extension, e.g. "glowroot-config-envs".
	Name   string
	Values map[string]string
	Keys   []string
}

// IsTemplateFileName reports whether fileName ends with the case-sensitive template suffix.
func IsTemplateFileName(fileName string) bool {
	return strings.HasSuffix(fileName, TemplateFileSuffix)
}

// Parser reads templates from disk.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseTemplate reads the dotenv file at templatePath.
func (parser *Parser) ParseTemplate(templatePath string) (Template, error) {
	fileName := filepath.Base(templatePath)
	if !IsTemplateFileName(fileName) {
		return Template{}, fmt.Errorf(notTemplateErrorTemplateConstant, ErrNotTemplate, templatePath)
	}

	values, readError := godotenv.Read(templatePath)
	if readError != nil {
		return Template{}, fmt.Errorf(parseTemplateErrorTemplateConstant, templatePath, readError)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return Template{
		SourcePath: templatePath,
		Name:       strings.TrimSuffix(fileName, exampleExtensionConstant),
		Values:     values,
		Keys:       keys,
	}, nil
}
