package consumer

import (
	"context"
	"fmt"
	"os"

	"github.com/ahwlsqja/lti-tool-provider/pkg/lti"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of the consumers file.
//
//	consumers:
//	  - key: moodle-prod
//	    secret: s3cr3t
type File struct {
	Consumers []Entry `yaml:"consumers"`
}

// Entry is one consumer in the consumers file.
type Entry struct {
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
}

// StaticRegistry serves credentials from an in-memory table.
type StaticRegistry struct {
	secrets map[string]string
}

// NewStaticRegistry builds a registry from key/secret pairs.
func NewStaticRegistry(entries []Entry) (*StaticRegistry, error) {
	secrets := make(map[string]string, len(entries))
	for i, e := range entries {
		creds := lti.Credentials{ConsumerKey: e.Key, Secret: e.Secret}
		if err := creds.Validate(); err != nil {
			return nil, fmt.Errorf("consumer #%d: %w", i, err)
		}
		if _, dup := secrets[e.Key]; dup {
			return nil, fmt.Errorf("consumer %q declared twice", e.Key)
		}
		secrets[e.Key] = e.Secret
	}
	return &StaticRegistry{secrets: secrets}, nil
}

// LoadFile reads a YAML consumers file.
func LoadFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read consumers file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse consumers file: %w", err)
	}
	return NewStaticRegistry(f.Consumers)
}

func (r *StaticRegistry) Lookup(_ context.Context, consumerKey string) (lti.Credentials, error) {
	secret, ok := r.secrets[consumerKey]
	if !ok {
		return lti.Credentials{}, ErrConsumerNotFound
	}
	return lti.Credentials{ConsumerKey: consumerKey, Secret: secret}, nil
}

// Len returns the number of registered consumers.
func (r *StaticRegistry) Len() int {
	return len(r.secrets)
}
