package config

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/versioio/versio/internal/mark"
	"github.com/versioio/versio/internal/scan"
	"github.com/versioio/versio/internal/sizer"
	"github.com/versioio/versio/internal/verr"
)

// Options holds the handful of operational knobs spec.md §6 places
// under the config's top-level options key.
type Options struct {
	PrevTag string
}

// Config is a loaded .versio.yaml: every project, the size policy, and
// operational options.
type Config struct {
	Projects []*Project
	ByID     map[ProjectId]*Project
	Options  Options
	Sizes    sizer.Policy
	Warnings Warnings
}

const defaultPrevTag = "versio-prev"

// --- YAML shape -------------------------------------------------------

type rawConfig struct {
	Options struct {
		PrevTag string `yaml:"prev_tag"`
	} `yaml:"options"`
	Projects []rawProject          `yaml:"projects"`
	Sizes    map[string]interface{} `yaml:"sizes"`
}

type rawProject struct {
	ID        int               `yaml:"id"`
	Name      string            `yaml:"name"`
	Root      string            `yaml:"root"`
	TagPrefix string            `yaml:"tag_prefix"`
	Labels    []string          `yaml:"labels"`
	Depends   []int             `yaml:"depends"`
	Subs      bool              `yaml:"subs"`
	Hooks     map[string]string `yaml:"hooks"`
	Version   rawVersion        `yaml:"version"`
}

type rawVersion struct {
	File    string   `yaml:"file"`
	Json    string   `yaml:"json"`
	Yaml    string   `yaml:"yaml"`
	Toml    string   `yaml:"toml"`
	Xml     string   `yaml:"xml"`
	Pattern string   `yaml:"pattern"`
	Tags    *rawTags `yaml:"tags"`
}

type rawTags struct {
	Default string `yaml:"default"`
}

// Load parses a .versio.yaml document into a Config and runs its
// structural validation (spec.md §3's Config invariants).
func Load(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, verr.Wrap(verr.ConfigInvalid, err, "parsing .versio.yaml")
	}

	cfg := &Config{
		ByID:    map[ProjectId]*Project{},
		Options: Options{PrevTag: raw.Options.PrevTag},
	}
	if cfg.Options.PrevTag == "" {
		cfg.Options.PrevTag = defaultPrevTag
	}

	for _, rp := range raw.Projects {
		proj, err := buildProject(rp)
		if err != nil {
			return nil, err
		}
		cfg.Projects = append(cfg.Projects, proj)
	}

	sizes, err := parseSizes(raw.Sizes)
	if err != nil {
		return nil, err
	}
	cfg.Sizes = sizes

	if err := cfg.validateStructure(); err != nil {
		return nil, err
	}
	cfg.Warnings = cfg.CheckLabels(cfg.Sizes.Scopes())
	return cfg, nil
}

func buildProject(rp rawProject) (*Project, error) {
	if rp.Root == "" {
		rp.Root = "."
	}

	source, err := buildVersionSource(rp.Version)
	if err != nil {
		return nil, verr.Wrap(verr.ConfigInvalid, err, "project %q version", rp.Name)
	}

	labels := map[string]bool{}
	for _, l := range rp.Labels {
		labels[l] = true
	}
	depends := map[ProjectId]bool{}
	for _, d := range rp.Depends {
		depends[ProjectId(d)] = true
	}

	return &Project{
		ID:        ProjectId(rp.ID),
		Name:      rp.Name,
		Root:      rp.Root,
		Source:    source,
		TagPrefix: rp.TagPrefix,
		Labels:    labels,
		Depends:   depends,
		Subs:      rp.Subs,
		Hooks:     rp.Hooks,
	}, nil
}

func buildVersionSource(v rawVersion) (VersionSource, error) {
	if v.Tags != nil {
		def := v.Tags.Default
		if def == "" {
			def = "0.0.0"
		}
		return TagsSource{Default: def}, nil
	}

	if v.File == "" {
		return nil, verr.New(verr.ConfigInvalid, "version must declare either file or tags")
	}

	picker, err := buildPicker(v)
	if err != nil {
		return nil, err
	}
	return FileSource{Path: v.File, Picker: picker}, nil
}

func buildPicker(v rawVersion) (mark.Picker, error) {
	switch {
	case v.Json != "":
		return scan.JSONPicker{Parts: mark.ParseParts(v.Json)}, nil
	case v.Yaml != "":
		return scan.YAMLPicker{Parts: mark.ParseParts(v.Yaml)}, nil
	case v.Toml != "":
		return scan.TOMLPicker{Parts: mark.ParseParts(v.Toml)}, nil
	case v.Xml != "":
		return scan.XMLPicker{Parts: mark.ParseParts(v.Xml)}, nil
	case v.Pattern != "":
		return scan.NewLinePicker(v.Pattern)
	default:
		return scan.WholeFilePicker{}, nil
	}
}

func parseSizes(raw map[string]interface{}) (sizer.Policy, error) {
	policy := sizer.NewPolicy()
	policy.UseAngular = true

	if v, ok := raw["use_angular"]; ok {
		b, ok := v.(bool)
		if !ok {
			return policy, verr.New(verr.ConfigInvalid, "sizes.use_angular must be a bool")
		}
		policy.UseAngular = b
	}

	if v, ok := raw["fail"]; ok {
		list, ok := v.([]interface{})
		if !ok {
			return policy, verr.New(verr.ConfigInvalid, "sizes.fail must be a list of patterns")
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return policy, verr.New(verr.ConfigInvalid, "sizes.fail entries must be strings")
			}
			policy.Fail = append(policy.Fail, s)
		}
	}

	for key, v := range raw {
		if key == "use_angular" || key == "fail" {
			continue
		}
		sizeStr, ok := v.(string)
		if !ok {
			return policy, verr.New(verr.ConfigInvalid, "sizes.%s must be a size name", key)
		}
		size, err := sizer.ParseSize(sizeStr)
		if err != nil {
			return policy, verr.Wrap(verr.ConfigInvalid, err, "sizes.%s", key)
		}
		kind, scope := key, ""
		if idx := strings.Index(key, "."); idx >= 0 {
			kind, scope = key[:idx], key[idx+1:]
		}
		policy.SetRule(kind, scope, size)
	}

	return policy, nil
}

// Project looks up a project by id.
func (c *Config) Project(id ProjectId) (*Project, bool) {
	p, ok := c.ByID[id]
	return p, ok
}
