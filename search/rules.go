package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// BucketSpec is one (predicate, emitted value) pair of a bucket table. When
// is an expr predicate over the rule's parsed inputs. Tables are first-match-
// wins, so authors order predicates most-specific first; that ordering is
// part of the contract, not incidental.
type BucketSpec struct {
	When string `yaml:"when"`
	Emit string `yaml:"emit"`
}

// DerivedFieldSpec declares a synthetic categorical field computed from raw
// document fields at query time.
type DerivedFieldSpec struct {
	Name    string       `yaml:"name"`
	Inputs  []string     `yaml:"inputs"` // dotted paths, e.g. "attributes.width", "tags"
	Buckets []BucketSpec `yaml:"buckets"`
}

type bucketRule struct {
	prog *vm.Program
	emit string
}

type derivedField struct {
	name   string
	inputs []string
	rules  []bucketRule
}

// Ruleset holds the compiled derivation rules, looked up by name when the
// query builder registers runtime fields. Built once at startup; evaluation
// is pure and side-effect-free.
type Ruleset struct {
	fields map[string]*derivedField
}

// NewRuleset compiles every bucket predicate. A predicate that fails to
// compile is a boot error, not a request-time one.
func NewRuleset(specs []DerivedFieldSpec) (*Ruleset, error) {
	rs := &Ruleset{fields: make(map[string]*derivedField, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("derived field with empty name")
		}
		if _, dup := rs.fields[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate derived field %q", spec.Name)
		}
		if len(spec.Inputs) == 0 {
			return nil, fmt.Errorf("derived field %q has no inputs", spec.Name)
		}
		df := &derivedField{name: spec.Name, inputs: spec.Inputs}
		for i, b := range spec.Buckets {
			prog, err := expr.Compile(b.When)
			if err != nil {
				return nil, fmt.Errorf("derived field %q bucket %d: %w", spec.Name, i, err)
			}
			df.rules = append(df.rules, bucketRule{prog: prog, emit: b.Emit})
		}
		rs.fields[spec.Name] = df
	}
	return rs, nil
}

// Has reports whether a derived field is registered.
func (rs *Ruleset) Has(name string) bool {
	_, ok := rs.fields[name]
	return ok
}

// Names lists the registered derived field names.
func (rs *Ruleset) Names() []string {
	names := make([]string, 0, len(rs.fields))
	for n := range rs.fields {
		names = append(names, n)
	}
	return names
}

// Derive evaluates the named rule against a raw document and returns the
// emitted bucket value. ok is false when the document is missing its inputs,
// the value cannot be parsed, or no predicate matches — the document is then
// simply excluded from that facet, never double-counted and never an error.
func (rs *Ruleset) Derive(name string, doc map[string]any) (string, bool) {
	df, ok := rs.fields[name]
	if !ok {
		return "", false
	}
	env := df.buildEnv(doc)
	for _, rule := range df.rules {
		out, err := expr.Run(rule.prog, env)
		if err != nil {
			// Unparsable input for this predicate: skip the document for
			// this bucket, keep trying the rest of the table.
			continue
		}
		if matched, ok := out.(bool); ok && matched {
			return rule.emit, true
		}
	}
	return "", false
}

// buildEnv assembles the predicate environment from the rule's inputs:
//
//	value  — raw string form of the first scalar input
//	num    — numeric value parsed out of it ("30\"", "30 in", "125 lbs"), or nil
//	tags   — lowercased entries of any list input
//	hasTag — case-insensitive membership test over tags
func (df *derivedField) buildEnv(doc map[string]any) map[string]any {
	var value string
	var haveValue bool
	var tags []string

	for _, input := range df.inputs {
		raw, ok := lookupPath(doc, input)
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case []string:
			for _, t := range v {
				tags = append(tags, strings.ToLower(t))
			}
		case []any:
			for _, t := range v {
				tags = append(tags, strings.ToLower(fmt.Sprint(t)))
			}
		default:
			if !haveValue {
				value = strings.TrimSpace(fmt.Sprint(v))
				haveValue = true
			}
		}
	}

	env := map[string]any{
		"value": value,
		"tags":  tags,
		"hasTag": func(tag string) bool {
			tag = strings.ToLower(tag)
			for _, t := range tags {
				if t == tag {
					return true
				}
			}
			return false
		},
	}
	if n, ok := ParseMeasure(value); ok {
		env["num"] = n
	} else {
		env["num"] = nil
	}
	return env
}

var measureRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// ParseMeasure pulls the leading numeric value out of a free-text measurement
// string, tolerating unit suffixes (`30"`, `30 in`, `30.5in`, `125 lbs`) and
// both integer and decimal forms.
func ParseMeasure(raw string) (float64, bool) {
	m := measureRe.FindString(raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// lookupPath resolves a dotted path ("attributes.width") inside a raw
// document. Map values keyed by string and one level of nesting per segment.
func lookupPath(doc map[string]any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	var cur any = doc
	for _, seg := range segs {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]string:
			v, ok := m[seg]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	if s, ok := cur.(string); ok && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return cur, true
}
