package console

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValueSet holds the values bound for one invocation, keyed by argument
// name or flag key. Parsed values carry the Go type their ArgType casts to;
// defaults keep the type they were declared with, so accessors also accept
// the string form.
type ValueSet struct {
	values map[string]any
}

func newValueSet(m map[string]any) ValueSet {
	return ValueSet{values: m}
}

// Has reports whether a value was bound under name, either parsed or from a default.
func (v ValueSet) Has(name string) bool {
	_, ok := v.values[name]
	return ok
}

// String returns the value formatted as text, or "" when unset.
func (v ValueSet) String(name string) string {
	switch t := v.values[name].(type) {
	case nil:
		return ""
	case string:
		return t
	case json.RawMessage:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// Strings returns the values of a repeatable argument.
func (v ValueSet) Strings(name string) []string {
	switch t := v.values[name].(type) {
	case nil:
		return nil
	case []string:
		return slices.Clone(t)
	case string:
		return []string{t}
	default:
		return []string{fmt.Sprint(t)}
	}
}

func (v ValueSet) Bool(name string) bool {
	switch t := v.values[name].(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	}
	return false
}

func (v ValueSet) Int(name string) int {
	switch t := v.values[name].(type) {
	case int:
		return t
	case float64:
		return int(t)
	case string:
		i, _ := strconv.Atoi(t)
		return i
	}
	return 0
}

func (v ValueSet) Float(name string) float64 {
	switch t := v.values[name].(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func (v ValueSet) Duration(name string) time.Duration {
	switch t := v.values[name].(type) {
	case time.Duration:
		return t
	case string:
		d, _ := time.ParseDuration(t)
		return d
	}
	return 0
}

// DecodeJSON decodes a json-typed value into dest. Parsed values and string
// defaults are decoded as JSON text; other defaults are round-tripped
// through encoding/json.
func (v ValueSet) DecodeJSON(name string, dest any) error {
	val, ok := v.values[name]
	if !ok {
		return fmt.Errorf("value %q not present", name)
	}
	switch t := val.(type) {
	case json.RawMessage:
		return json.Unmarshal(t, dest)
	case string:
		return json.Unmarshal([]byte(t), dest)
	}
	encoded, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}

// ArgsParser validates raw tokens against a CommandSpec and binds them into
// typed value sets. It is the argument-schema collaborator the resolver
// calls for every builtin stage.
type ArgsParser struct{}

// NewArgsParser constructs an ArgsParser.
func NewArgsParser() *ArgsParser { return &ArgsParser{} }

// Parse parses raw arguments (without the command name) with the provided spec.
func (p *ArgsParser) Parse(raw []string, spec CommandSpec) (ValueSet, ValueSet, error) {
	argValues := map[string]any{}
	flagValues := map[string]any{}

	// A repeatable positional is always last, so posIndex stays on it.
	posIndex := 0

	flagsDone := false
	i := 0
	for i < len(raw) {
		token := raw[i]
		if !flagsDone && token == "--" {
			flagsDone = true
			i++
			continue
		}
		if !flagsDone && strings.HasPrefix(token, "--") {
			name, inline, hasInline := strings.Cut(strings.TrimPrefix(token, "--"), "=")
			flag, ok := lookupLong(name, spec.Flags)
			if !ok {
				return ValueSet{}, ValueSet{}, fmt.Errorf("unknown flag: --%s", name)
			}
			value, consumed, err := consumeFlagValue(flag, "--"+name, raw, i, inline, hasInline)
			if err != nil {
				return ValueSet{}, ValueSet{}, err
			}
			flagValues[flag.key()] = value
			i += consumed
			continue
		}
		if !flagsDone && strings.HasPrefix(token, "-") && token != "-" {
			alias, inline, hasInline := strings.Cut(strings.TrimPrefix(token, "-"), "=")
			flag, ok := lookupShorthand(alias, spec.Flags)
			if !ok {
				return ValueSet{}, ValueSet{}, fmt.Errorf("unknown flag: -%s", alias)
			}
			value, consumed, err := consumeFlagValue(flag, "-"+alias, raw, i, inline, hasInline)
			if err != nil {
				return ValueSet{}, ValueSet{}, err
			}
			flagValues[flag.key()] = value
			i += consumed
			continue
		}

		if posIndex >= len(spec.Args) {
			return ValueSet{}, ValueSet{}, fmt.Errorf("unexpected argument: %s", token)
		}

		arg := spec.Args[posIndex]
		if arg.Repeatable {
			repeatValues, _ := argValues[arg.Name].([]string)
			argValues[arg.Name] = append(repeatValues, token)
		} else {
			casted, err := castValue(arg.Type, token, arg.EnumValues)
			if err != nil {
				return ValueSet{}, ValueSet{}, fmt.Errorf("argument %s: %w", arg.Name, err)
			}
			argValues[arg.Name] = casted
			posIndex++
		}
		i++
	}

	if err := applyArgDefaults(argValues, spec.Args); err != nil {
		return ValueSet{}, ValueSet{}, err
	}
	if err := applyFlagDefaults(flagValues, spec.Flags); err != nil {
		return ValueSet{}, ValueSet{}, err
	}

	return newValueSet(argValues), newValueSet(flagValues), nil
}

func lookupLong(name string, flags []FlagSpec) (FlagSpec, bool) {
	if name == "" {
		return FlagSpec{}, false
	}
	for _, flag := range flags {
		if flag.Name == name {
			return flag, true
		}
	}
	return FlagSpec{}, false
}

func lookupShorthand(alias string, flags []FlagSpec) (FlagSpec, bool) {
	if alias == "" {
		return FlagSpec{}, false
	}
	for _, flag := range flags {
		if flag.Shorthand == alias {
			return flag, true
		}
	}
	return FlagSpec{}, false
}

// consumeFlagValue returns the flag value and how many tokens it used.
func consumeFlagValue(flag FlagSpec, display string, raw []string, pos int, inline string, hasInline bool) (any, int, error) {
	if hasInline {
		value, err := castValue(flag.Type, inline, flag.EnumValues)
		if err != nil {
			return nil, 0, fmt.Errorf("flag %s: %w", display, err)
		}
		return value, 1, nil
	}

	if flag.Type == ArgTypeBool {
		return true, 1, nil
	}

	if pos+1 >= len(raw) {
		return nil, 0, fmt.Errorf("flag %s requires a value", display)
	}

	casted, err := castValue(flag.Type, raw[pos+1], flag.EnumValues)
	if err != nil {
		return nil, 0, fmt.Errorf("flag %s: %w", display, err)
	}
	return casted, 2, nil
}

func castValue(kind ArgType, raw string, enum []string) (any, error) {
	switch kind {
	case ArgTypeString, "":
		return raw, nil
	case ArgTypeInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return i, nil
	case ArgTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case ArgTypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ArgTypeDuration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		return d, nil
	case ArgTypeEnum:
		if len(enum) == 0 {
			return raw, nil
		}
		for _, candidate := range enum {
			if candidate == raw {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("value %q not in %s", raw, strings.Join(enum, "|"))
	case ArgTypeJSON:
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("invalid json for value %q", raw)
		}
		return json.RawMessage(raw), nil
	default:
		return raw, nil
	}
}

func applyArgDefaults(target map[string]any, args []ArgSpec) error {
	for _, arg := range args {
		if _, ok := target[arg.Name]; ok {
			continue
		}
		if arg.Default != nil {
			target[arg.Name] = arg.Default
			continue
		}
		if arg.Required {
			return fmt.Errorf("missing required argument: %s", arg.Name)
		}
	}
	return nil
}

func applyFlagDefaults(target map[string]any, flags []FlagSpec) error {
	for _, flag := range flags {
		key := flag.key()
		if _, ok := target[key]; ok {
			continue
		}
		switch {
		case flag.Default != nil:
			target[key] = flag.Default
		case flag.Type == ArgTypeBool:
			target[key] = false
		case flag.Required:
			return fmt.Errorf("missing required flag: %s", flagDisplay(flag))
		}
	}
	return nil
}

func flagDisplay(flag FlagSpec) string {
	if flag.Name != "" {
		return "--" + flag.Name
	}
	return "-" + flag.Shorthand
}

// FormatUsage renders a usage string from command spec.
func FormatUsage(spec CommandSpec) string {
	var b strings.Builder
	b.WriteString(spec.Name)
	if len(spec.Aliases) > 0 {
		b.WriteString(" (aka ")
		b.WriteString(strings.Join(spec.Aliases, ", "))
		b.WriteString(")")
	}

	for _, arg := range spec.Args {
		b.WriteString(" ")
		name := strings.ToUpper(arg.Name)
		if arg.Repeatable {
			name += "..."
		}
		if arg.Required {
			b.WriteString(fmt.Sprintf("<%s>", name))
		} else {
			b.WriteString(fmt.Sprintf("[%s]", name))
		}
	}

	for _, flag := range spec.Flags {
		if flag.Hidden {
			continue
		}
		b.WriteString(" [")
		if flag.Shorthand != "" && flag.Name != "" {
			b.WriteString("-" + flag.Shorthand + "|")
		}
		b.WriteString(flagDisplay(flag))
		if flag.Type != ArgTypeBool {
			b.WriteString(" " + strings.ToUpper(flag.key()))
		}
		b.WriteString("]")
	}

	return b.String()
}
