// Package config holds the domain settings shared by the CLI commands and
// the HTTP server, and turns them into pipeline options.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// Configuration keys. Environment variables use the SCOREMERGE_ prefix
// with dots replaced by underscores (SCOREMERGE_ALIASES_ID).
const (
	KeyPolicy         = "policy"
	KeyIDMode         = "id_mode"
	KeyScoreMode      = "score_mode"
	KeyJoinKey        = "join_key"
	KeyCategoryPrefix = "category_prefix"
	KeyExportTemplate = "export_template"
	KeyDelimiter      = "delimiter"
	KeyTop            = "top"
	KeyWorkers        = "workers"
	KeyIDColumn       = "id_column"
	KeyNameColumn     = "name_column"
	KeyAliasesID      = "aliases.id"
	KeyAliasesName    = "aliases.name"
	KeyAliasesScore   = "aliases.score"
	KeyMetadata       = "metadata"
	KeyDataDir        = "data_dir"
	KeyPort           = "port"
	KeyCacheTTL       = "cache_ttl"
	KeyRateLimit      = "rate_limit"
)

// Settings are the domain settings after config file, environment and
// flags have been applied.
type Settings struct {
	Policy         string
	IDMode         string
	ScoreMode      string
	JoinKey        string
	CategoryPrefix string
	ExportTemplate string
	Delimiter      string
	Top            int
	Workers        int
	IDColumn       string
	NameColumn     string
	IDAliases      []string
	NameAliases    []string
	ScoreAliases   []string
	Metadata       string

	// Server
	DataDir   string
	Port      int
	CacheTTL  time.Duration
	RateLimit int
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Policy:         string(scores.PolicyFloat),
		IDMode:         string(scores.IDModeLegacy),
		ScoreMode:      string(scores.ScoreModeStrip),
		JoinKey:        string(scores.JoinByID),
		CategoryPrefix: constants.DefaultCategoryPrefix,
		ExportTemplate: constants.DefaultExportTemplate,
		Delimiter:      "auto",
		Top:            constants.DefaultTop,
		Workers:        constants.DefaultWorkers,
		IDColumn:       constants.DefaultIDColumn,
		NameColumn:     constants.DefaultNameColumn,
		DataDir:        ".",
		Port:           constants.DefaultPort,
		CacheTTL:       constants.DefaultCacheTTL,
		RateLimit:      constants.DefaultRateLimit,
	}
}

// SetDefaults registers the defaults with a viper instance.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyPolicy, d.Policy)
	v.SetDefault(KeyIDMode, d.IDMode)
	v.SetDefault(KeyScoreMode, d.ScoreMode)
	v.SetDefault(KeyJoinKey, d.JoinKey)
	v.SetDefault(KeyCategoryPrefix, d.CategoryPrefix)
	v.SetDefault(KeyExportTemplate, d.ExportTemplate)
	v.SetDefault(KeyDelimiter, d.Delimiter)
	v.SetDefault(KeyTop, d.Top)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyIDColumn, d.IDColumn)
	v.SetDefault(KeyNameColumn, d.NameColumn)
	v.SetDefault(KeyDataDir, d.DataDir)
	v.SetDefault(KeyPort, d.Port)
	v.SetDefault(KeyCacheTTL, d.CacheTTL)
	v.SetDefault(KeyRateLimit, d.RateLimit)
}

// FromViper reads the settings from a viper instance.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		Policy:         v.GetString(KeyPolicy),
		IDMode:         v.GetString(KeyIDMode),
		ScoreMode:      v.GetString(KeyScoreMode),
		JoinKey:        v.GetString(KeyJoinKey),
		CategoryPrefix: v.GetString(KeyCategoryPrefix),
		ExportTemplate: v.GetString(KeyExportTemplate),
		Delimiter:      v.GetString(KeyDelimiter),
		Top:            v.GetInt(KeyTop),
		Workers:        v.GetInt(KeyWorkers),
		IDColumn:       v.GetString(KeyIDColumn),
		NameColumn:     v.GetString(KeyNameColumn),
		IDAliases:      v.GetStringSlice(KeyAliasesID),
		NameAliases:    v.GetStringSlice(KeyAliasesName),
		ScoreAliases:   v.GetStringSlice(KeyAliasesScore),
		Metadata:       v.GetString(KeyMetadata),
		DataDir:        v.GetString(KeyDataDir),
		Port:           v.GetInt(KeyPort),
		CacheTTL:       v.GetDuration(KeyCacheTTL),
		RateLimit:      v.GetInt(KeyRateLimit),
	}
}

// ScoreOptions validates the settings and builds the core options.
func (s Settings) ScoreOptions() (scores.Options, error) {
	opts := scores.DefaultOptions()

	policy, err := scores.ParsePolicy(s.Policy)
	if err != nil {
		return opts, errors.WrapValidation(KeyPolicy, err)
	}
	idMode, err := scores.ParseIDMode(s.IDMode)
	if err != nil {
		return opts, errors.WrapValidation(KeyIDMode, err)
	}
	scoreMode, err := scores.ParseScoreMode(s.ScoreMode)
	if err != nil {
		return opts, errors.WrapValidation(KeyScoreMode, err)
	}
	joinKey, err := scores.ParseJoinKey(s.JoinKey)
	if err != nil {
		return opts, errors.WrapValidation(KeyJoinKey, err)
	}

	opts.IDMode = idMode
	opts.Numbers = scores.NumberParser{Mode: scoreMode, Policy: policy}
	opts.JoinKey = joinKey
	opts.CategoryPrefix = s.CategoryPrefix
	opts.Resolver = scores.NewResolver(scores.MatchStrict, s.Aliases())
	return opts, nil
}

// Aliases returns the configured header aliases. Unset fields keep the
// defaults.
func (s Settings) Aliases() scores.Aliases {
	a := scores.Aliases{}
	set := func(f scores.Field, names []string) {
		var clean []string
		for _, n := range names {
			if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
				clean = append(clean, n)
			}
		}
		if len(clean) > 0 {
			a[f] = clean
		}
	}
	set(scores.FieldID, s.IDAliases)
	set(scores.FieldName, s.NameAliases)
	set(scores.FieldScore, s.ScoreAliases)
	return scores.DefaultAliases().Merge(a)
}

// Layout returns the identifier and name headers of rendered tables.
func (s Settings) Layout() scores.Layout {
	l := scores.DefaultLayout()
	if s.IDColumn != "" {
		l.IDColumn = s.IDColumn
	}
	if s.NameColumn != "" {
		l.NameColumn = s.NameColumn
	}
	return l
}

// Reader returns the source reader for the configured delimiter.
func (s Settings) Reader() (ingest.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(s.Delimiter)) {
	case "", "auto":
		return ingest.Reader{}, nil
	case ",", "comma":
		return ingest.Reader{Delimiter: ','}, nil
	case ";", "semicolon":
		return ingest.Reader{Delimiter: ';'}, nil
	case "tab", `\t`, "\t":
		return ingest.Reader{Delimiter: '\t'}, nil
	case "|", "pipe":
		return ingest.Reader{Delimiter: '|'}, nil
	default:
		return ingest.Reader{}, errors.NewValidationError(KeyDelimiter, s.Delimiter, "must be auto, comma, semicolon, tab or pipe")
	}
}

// PipelineConfig builds the ingest configuration.
func (s Settings) PipelineConfig() (ingest.Config, error) {
	opts, err := s.ScoreOptions()
	if err != nil {
		return ingest.Config{}, err
	}
	reader, err := s.Reader()
	if err != nil {
		return ingest.Config{}, err
	}
	if s.Workers < 0 || s.Workers > constants.MaxWorkers {
		return ingest.Config{}, errors.NewValidationError(KeyWorkers, s.Workers, "must be between 0 and 32")
	}
	return ingest.Config{
		Options:         opts,
		Reader:          reader,
		Workers:         s.Workers,
		MetadataPath:    s.Metadata,
		MetadataAliases: s.Aliases(),
	}, nil
}
