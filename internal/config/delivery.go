package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed delivery_methods.yaml
var defaultDeliveryMethods []byte

// DeliveryMethod is an internal delivery code. Shipping rates at the payment
// provider point at one of these through their metadata.
type DeliveryMethod struct {
	Code          string `yaml:"code"`
	Label         string `yaml:"label"`
	RequiresRelay bool   `yaml:"requiresRelay"`
}

type DeliveryMethods []DeliveryMethod

type deliveryFile struct {
	Methods DeliveryMethods `yaml:"methods"`
}

func (m DeliveryMethods) Lookup(code string) (DeliveryMethod, bool) {
	code = strings.TrimSpace(code)
	for _, method := range m {
		if method.Code == code {
			return method, true
		}
	}
	return DeliveryMethod{}, false
}

// LoadDeliveryMethods reads the catalog from path, or the embedded default
// when path is empty.
func LoadDeliveryMethods(path string) (DeliveryMethods, error) {
	data := defaultDeliveryMethods
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return ParseDeliveryMethods(data)
}

func ParseDeliveryMethods(data []byte) (DeliveryMethods, error) {
	var file deliveryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse delivery methods: %w", err)
	}
	if len(file.Methods) == 0 {
		return nil, fmt.Errorf("no delivery methods defined")
	}

	seen := make(map[string]struct{}, len(file.Methods))
	for i, method := range file.Methods {
		code := strings.TrimSpace(method.Code)
		if code == "" {
			return nil, fmt.Errorf("delivery method %d has no code", i)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("duplicate delivery method %q", code)
		}
		seen[code] = struct{}{}
		file.Methods[i].Code = code
	}
	return file.Methods, nil
}
