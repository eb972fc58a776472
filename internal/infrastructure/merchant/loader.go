// Package merchant loads merchant adapter definitions from YAML and
// builds the extraction registry from them.
package merchant

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/facturasnap/backend/internal/domain/extraction"
)

//go:embed definitions/*.yaml
var builtin embed.FS

//go:embed schema.json
var schemaJSON []byte

// Definition is the YAML shape of one merchant.
type Definition struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	OCR          OCRDefinition     `yaml:"ocr"`
	FolioPattern string            `yaml:"folio_pattern"`
	Fields       map[string]string `yaml:"fields"`
	Automation   *ScriptDefinition `yaml:"automation"`
}

// OCRDefinition is the YAML shape of the OCR settings.
type OCRDefinition struct {
	Language    string `yaml:"language"`
	EngineMode  *int   `yaml:"engine_mode"`
	PageSegMode *int   `yaml:"page_seg_mode"`
	Whitelist   string `yaml:"whitelist"`
}

// ScriptDefinition is the YAML shape of an automation script.
type ScriptDefinition struct {
	StartURL    string           `yaml:"start_url"`
	BaseURL     string           `yaml:"base_url"`
	StepTimeout string           `yaml:"step_timeout"`
	Steps       []StepDefinition `yaml:"steps"`
}

// StepDefinition is the YAML shape of one step.
type StepDefinition struct {
	State    string `yaml:"state"`
	Action   string `yaml:"action"`
	Selector string `yaml:"selector"`
	Value    string `yaml:"value"`
	Literal  string `yaml:"literal"`
}

// Loader parses and validates merchant definitions.
type Loader struct {
	schema *jsonschema.Schema
	logger *zap.Logger
}

// NewLoader compiles the definition schema.
func NewLoader(logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("merchant.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add merchant schema: %w", err)
	}
	schema, err := compiler.Compile("merchant.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile merchant schema: %w", err)
	}
	return &Loader{schema: schema, logger: logger}, nil
}

// LoadRegistry builds a registry from the built-in definitions plus every
// *.yaml / *.yml file in dir (dir may be empty). A file whose id matches a
// built-in merchant fails registration.
func (l *Loader) LoadRegistry(dir string) (*extraction.Registry, error) {
	adapters, err := l.LoadFS(builtin, "definitions")
	if err != nil {
		return nil, fmt.Errorf("built-in merchants: %w", err)
	}
	if dir != "" {
		extra, err := l.LoadFS(os.DirFS(dir), ".")
		if err != nil {
			return nil, fmt.Errorf("merchants in %s: %w", dir, err)
		}
		adapters = append(adapters, extra...)
	}
	registry, err := extraction.NewRegistry(adapters...)
	if err != nil {
		return nil, err
	}
	for _, a := range registry.List() {
		l.logger.Info("Merchant registered",
			zap.String("merchant_id", a.ID()),
			zap.Bool("automation", a.SupportsAutomation()),
		)
	}
	return registry, nil
}

// LoadFS parses every definition file under root in fsys.
func (l *Loader) LoadFS(fsys fs.FS, root string) ([]*extraction.MerchantAdapter, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	adapters := make([]*extraction.MerchantAdapter, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(root, name)))
		if err != nil {
			return nil, err
		}
		adapter, err := l.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// Parse validates one YAML document against the schema and converts it to
// an adapter.
func (l *Loader) Parse(data []byte) (*extraction.MerchantAdapter, error) {
	if err := l.validate(data); err != nil {
		return nil, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	return def.ToAdapter()
}

// validate round-trips YAML through JSON so the schema sees JSON types.
func (l *Loader) validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode definition: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert definition: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("convert definition: %w", err)
	}
	if err := l.schema.Validate(v); err != nil {
		return fmt.Errorf("definition does not match schema: %w", err)
	}
	return nil
}

// ToAdapter compiles patterns and the script into a MerchantAdapter.
func (d Definition) ToAdapter() (*extraction.MerchantAdapter, error) {
	folio, err := regexp.Compile(d.FolioPattern)
	if err != nil {
		return nil, fmt.Errorf("folio_pattern: %w", err)
	}
	fields := make(map[string]*regexp.Regexp, len(d.Fields))
	for name, expr := range d.Fields {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("fields.%s: %w", name, err)
		}
		fields[name] = re
	}

	ocr := extraction.DefaultOCRConfig()
	if d.OCR.EngineMode != nil {
		ocr.EngineMode = *d.OCR.EngineMode
	}
	if d.OCR.PageSegMode != nil {
		ocr.PageSegMode = *d.OCR.PageSegMode
	}
	ocr.CharWhitelist = d.OCR.Whitelist

	var script *extraction.AutomationScript
	if d.Automation != nil {
		script, err = d.Automation.toScript()
		if err != nil {
			return nil, fmt.Errorf("automation: %w", err)
		}
	}

	return extraction.NewMerchantAdapter(extraction.MerchantAdapterParams{
		ID:           d.ID,
		DisplayName:  d.Name,
		OCRLanguage:  d.OCR.Language,
		OCRConfig:    ocr,
		FolioPattern: folio,
		Fields:       fields,
		Script:       script,
	})
}

func (s ScriptDefinition) toScript() (*extraction.AutomationScript, error) {
	script := &extraction.AutomationScript{
		StartURL: s.StartURL,
		BaseURL:  s.BaseURL,
		Steps:    make([]extraction.Step, 0, len(s.Steps)),
	}
	if s.StepTimeout != "" {
		d, err := time.ParseDuration(s.StepTimeout)
		if err != nil {
			return nil, fmt.Errorf("step_timeout: %w", err)
		}
		script.StepTimeout = d
	}
	for i, sd := range s.Steps {
		state, ok := extraction.ParseState(sd.State)
		if !ok {
			return nil, fmt.Errorf("steps[%d]: unknown state %q", i, sd.State)
		}
		script.Steps = append(script.Steps, extraction.Step{
			State:    state,
			Action:   extraction.Action(sd.Action),
			Selector: sd.Selector,
			Value:    extraction.ValueSource(sd.Value),
			Literal:  sd.Literal,
		})
	}
	return script, nil
}
