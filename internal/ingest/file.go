package ingest

import (
	"bytes"
	"fmt"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/jcii/hunt/internal/domain"
)

// candidateFile is the import format. A bare list of candidates is accepted too.
type candidateFile struct {
	Source string           `yaml:"source"`
	Jobs   []map[string]any `yaml:"jobs"`
}

// LoadCandidates reads candidates from a YAML file. Entries without a source
// take the file-level source. Validation is left to the caller.
func LoadCandidates(path string) ([]domain.Candidate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return DecodeCandidates(b)
}

// DecodeCandidates decodes the YAML import format.
func DecodeCandidates(b []byte) ([]domain.Candidate, error) {
	var file candidateFile
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var probe yaml.Node
	if err := yaml.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}
	if len(probe.Content) > 0 && probe.Content[0].Kind == yaml.SequenceNode {
		if err := probe.Content[0].Decode(&file.Jobs); err != nil {
			return nil, fmt.Errorf("parse candidates: %w", err)
		}
	} else if err := probe.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse candidates: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(file.Jobs))
	for i, raw := range file.Jobs {
		var c domain.Candidate
		if err := decodeCandidate(raw, &c); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		if c.Source == "" {
			c.Source = file.Source
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func decodeCandidate(raw map[string]any, c *domain.Candidate) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           c,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(payHook),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

var payType = reflect.TypeOf(domain.PayRange{})

// payHook accepts pay written as a string ("150k-200k") or a single number.
func payHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != payType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		return ParsePay(data.(string)), nil
	case reflect.Int, reflect.Int64, reflect.Float64:
		return ParsePay(fmt.Sprint(data)), nil
	default:
		return data, nil
	}
}
