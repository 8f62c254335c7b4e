package repair

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/hupe1980/medmesh/logging"
)

// Tier names the stage that produced an Outcome.
type Tier string

const (
	// TierStrict means the normalized text parsed as JSON.
	TierStrict Tier = "strict"
	// TierLenient means the text parsed only after general purpose repair.
	TierLenient Tier = "lenient"
	// TierRecovered means code/description objects were scavenged from broken text.
	TierRecovered Tier = "recovered"
)

// Outcome is the result of a repair run.
type Outcome struct {
	Text    string // Always valid JSON
	Tier    Tier
	Dropped int // Entries removed by the description filter
}

// Options configures a repair run.
type Options struct {
	// Lenient enables the jsonrepair tier between strict parsing and recovery.
	Lenient bool
	Logger  logging.Logger
}

// WithLenient enables the lenient tier.
func WithLenient() func(o *Options) {
	return func(o *Options) { o.Lenient = true }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

var (
	fencePattern     = regexp.MustCompile("(?m)^```[\\w-]*\\s*|```$")
	codeEntryPattern = regexp.MustCompile(`\{[^{}]*"code"\s*:\s*"[^"]*",\s*"description"\s*:\s*"[^"]*"\s*\}`)

	errTrailingData = errors.New("trailing data after JSON value")
)

// JSON is shorthand for Run(raw, optFns...).Text.
func JSON(raw string, optFns ...func(o *Options)) string {
	return Run(raw, optFns...).Text
}

// Run repairs raw model output.
func Run(raw string, optFns ...func(o *Options)) Outcome {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	text := Normalize(raw)

	v, err := decode(text)
	if err == nil {
		filtered, dropped := filter(v)
		return Outcome{Text: encode(filtered), Tier: TierStrict, Dropped: dropped}
	}

	opts.Logger.Debug("repair.strict.failed", "error", err.Error())

	if opts.Lenient {
		if fixed, rerr := jsonrepair.JSONRepair(text); rerr == nil {
			if v, derr := decode(fixed); derr == nil {
				filtered, dropped := filter(v)
				opts.Logger.Debug("repair.lenient.ok", "dropped", dropped)
				return Outcome{Text: encode(filtered), Tier: TierLenient, Dropped: dropped}
			}
		}
	}

	recovered, dropped := recoverEntries(text)
	opts.Logger.Debug("repair.recovered", "entries", len(recovered), "dropped", dropped)

	return Outcome{Text: encode(recovered), Tier: TierRecovered, Dropped: dropped}
}

// Normalize swaps single quotes for double quotes and strips markdown fences.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "'", `"`)
	text = fencePattern.ReplaceAllString(strings.TrimSpace(text), "")
	return strings.TrimSpace(text)
}

func decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return v, nil
}

// filter applies the description filter to a top-level list, or to every
// list-valued key of a top-level object.
func filter(v any) (any, int) {
	switch x := v.(type) {
	case []any:
		return filterEntries(x)
	case map[string]any:
		total := 0
		for k, val := range x {
			if list, ok := val.([]any); ok {
				kept, dropped := filterEntries(list)
				x[k] = kept
				total += dropped
			}
		}
		return x, total
	default:
		return v, 0
	}
}

func filterEntries(list []any) ([]any, int) {
	kept := make([]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok && !truthy(m["description"]) {
			continue
		}
		kept = append(kept, item)
	}
	return kept, len(list) - len(kept)
}

func recoverEntries(text string) ([]any, int) {
	recovered := make([]any, 0)
	dropped := 0
	for _, match := range codeEntryPattern.FindAllString(text, -1) {
		var entry map[string]any
		if err := json.Unmarshal([]byte(match), &entry); err != nil {
			continue
		}
		if !truthy(entry["description"]) {
			dropped++
			continue
		}
		recovered = append(recovered, entry)
	}
	return recovered, dropped
}

// truthy mirrors JSON truthiness: null, "", false, 0 and empty containers are empty.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
