package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/treekit/internal/errors"
	"github.com/mcncl/treekit/internal/models"
)

const yamlMergeTag = "!!merge"

// Alias expansion may grow a document far beyond its text. The walk stops
// once it has produced more than yamlNodesPerByte nodes per input byte, or
// yamlMinNodeBudget for small inputs.
const (
	yamlNodesPerByte  = 64
	yamlMinNodeBudget = 1 << 16
)

// yamlWalker converts one yaml.Node tree. budget is the number of Values it
// may still produce.
type yamlWalker struct {
	maxDepth int
	budget   int
	limit    int
}

// ParseYAML parses a single YAML document. Mapping order is kept and
// aliases are expanded.
func (p *Parser) ParseYAML(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Value{}, errors.NewParsingError(err.Error(), errors.ErrInvalidYAML)
	}

	limit := max(yamlMinNodeBudget, yamlNodesPerByte*len(data))
	w := &yamlWalker{maxDepth: p.maxDepth, budget: limit, limit: limit}
	v, err := w.fromNode(&doc, 0)
	if err != nil {
		return models.Value{}, err
	}
	return v, nil
}

// ParseYAML parses YAML with a default Parser.
func ParseYAML(data []byte) (models.Value, error) {
	return NewParser().ParseYAML(data)
}

func (w *yamlWalker) fromNode(n *yaml.Node, depth int) (models.Value, error) {
	if n.Kind != yaml.DocumentNode && n.Kind != yaml.AliasNode {
		w.budget--
		if w.budget < 0 {
			return models.Value{}, w.tooLarge(n)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return models.Null(), nil
		}
		return w.fromNode(n.Content[0], depth)
	case yaml.AliasNode:
		return w.fromNode(n.Alias, depth)
	case yaml.MappingNode:
		if depth+1 > w.maxDepth {
			return models.Value{}, w.tooDeep(n)
		}
		return w.mapping(n, depth+1)
	case yaml.SequenceNode:
		if depth+1 > w.maxDepth {
			return models.Value{}, w.tooDeep(n)
		}
		items := make([]models.Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := w.fromNode(child, depth+1)
			if err != nil {
				return models.Value{}, err
			}
			items = append(items, v)
		}
		return models.Array(items...), nil
	case yaml.ScalarNode:
		return scalar(n)
	default:
		return models.Null(), nil
	}
}

func (w *yamlWalker) mapping(n *yaml.Node, depth int) (models.Value, error) {
	obj := models.NewObject()
	var merged []*models.Object

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		val, err := w.fromNode(valNode, depth)
		if err != nil {
			return models.Value{}, err
		}

		if keyNode.ShortTag() == yamlMergeTag {
			switch val.Kind() {
			case models.KindObject:
				merged = append(merged, val.AsObject())
			case models.KindArray:
				for _, item := range val.AsArray() {
					if item.IsObject() {
						merged = append(merged, item.AsObject())
					}
				}
			}
			continue
		}

		key := keyNode.Value
		if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
			key = keyNode.Alias.Value
		}
		obj.Set(key, val)
	}

	// Explicit keys win over merged ones
	for _, src := range merged {
		src.Range(func(k string, v models.Value) bool {
			if !obj.Has(k) {
				obj.Set(k, v)
			}
			return true
		})
	}

	return models.FromObject(obj), nil
}

func scalar(n *yaml.Node) (models.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return models.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return models.Value{}, scalarError(n, err)
		}
		return models.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return models.Value{}, scalarError(n, err)
		}
		return models.Number(f), nil
	default:
		return models.String(n.Value), nil
	}
}

func scalarError(n *yaml.Node, err error) error {
	return errors.NewParsingError(
		fmt.Sprintf("invalid scalar %q at line %d, column %d", n.Value, n.Line, n.Column),
		fmt.Errorf("%w: %v", errors.ErrInvalidYAML, err),
	)
}

func (w *yamlWalker) tooDeep(n *yaml.Node) error {
	return errors.NewParsingError(
		fmt.Sprintf("nesting deeper than %d at line %d, column %d", w.maxDepth, n.Line, n.Column),
		errors.ErrTooDeep,
	)
}

func (w *yamlWalker) tooLarge(n *yaml.Node) error {
	return errors.NewParsingError(
		fmt.Sprintf("document expands to more than %d values at line %d, column %d", w.limit, n.Line, n.Column),
		errors.ErrTooLarge,
	)
}
