package parser

import (
	"bytes"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/mcncl/treekit/internal/config"
	"github.com/mcncl/treekit/internal/errors" // Custom errors package
	"github.com/mcncl/treekit/internal/models"
)

// Parser turns document text into a models.Value.
type Parser struct {
	maxDepth int
}

// NewParser creates a Parser with the default depth limit.
func NewParser() *Parser {
	return &Parser{maxDepth: config.DefaultMaxDepth}
}

// NewParserWithConfig creates a Parser using the input section of cfg.
func NewParserWithConfig(cfg *config.Config) *Parser {
	p := NewParser()
	if cfg != nil && cfg.Input.MaxDepth > 0 {
		p.maxDepth = cfg.Input.MaxDepth
	}
	return p
}

// Parse reads all of reader and parses it as JSON.
func (p *Parser) Parse(reader io.Reader) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read input", err)
	}
	return p.ParseBytes(data)
}

// ParseString parses a JSON document held in a string.
func (p *Parser) ParseString(text string) (models.Value, error) {
	return p.ParseBytes([]byte(text))
}

// ParseBytes parses a single JSON document. Object member order is kept.
func (p *Parser) ParseBytes(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if offset, ok := exceedsDepth(data, p.maxDepth); ok {
		return models.Value{}, errors.NewParsingError(
			fmt.Sprintf("nesting deeper than %d at %s", p.maxDepth, position(data, offset)),
			errors.ErrTooDeep,
		)
	}

	// The token stream skips ',' and ':' without checking them, so the
	// grammar is enforced by a full decode first.
	var probe interface{}
	if err := gojson.Unmarshal(data, &probe); err != nil {
		return models.Value{}, syntaxError(data, err)
	}

	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	w := &walker{dec: dec}

	tok, err := dec.Token()
	if err != nil {
		return models.Value{}, syntaxError(data, err)
	}
	root, err := w.value(tok)
	if err != nil {
		return models.Value{}, errors.NewParsingError("failed to decode document", err)
	}

	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return models.Value{}, errors.NewParsingError("multiple values found at the root", errors.ErrMultipleValues)
	}

	return root, nil
}

// ParseFile parses a file, choosing YAML for .yml/.yaml extensions and JSON otherwise.
func (p *Parser) ParseFile(filePath string) (models.Value, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.Value{}, err
	}
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yml", ".yaml":
		return p.ParseYAML(data)
	default:
		return p.ParseBytes(data)
	}
}

// ReadFile loads a document from disk with the same input errors ParseFile reports.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}

// Parse parses JSON from reader with a default Parser.
func Parse(reader io.Reader) (models.Value, error) {
	return NewParser().Parse(reader)
}

// ParseString parses JSON from a string with a default Parser.
func ParseString(text string) (models.Value, error) {
	return NewParser().ParseString(text)
}

// ParseBytes parses JSON from bytes with a default Parser.
func ParseBytes(data []byte) (models.Value, error) {
	return NewParser().ParseBytes(data)
}

// ParseFile parses a file with a default Parser.
func ParseFile(filePath string) (models.Value, error) {
	return NewParser().ParseFile(filePath)
}

// walker rebuilds the tree from the token stream. Depth is already bounded
// by exceedsDepth, so plain recursion is safe here.
type walker struct {
	dec *gojson.Decoder
}

func (w *walker) next() (gojson.Token, error) {
	tok, err := w.dec.Token()
	if stderrors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func (w *walker) value(tok gojson.Token) (models.Value, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			return w.object()
		case '[':
			return w.array()
		}
		return models.Value{}, fmt.Errorf("unexpected delimiter '%c'", rune(t))
	case string:
		return models.String(t), nil
	case gojson.Number:
		return number(string(t))
	case float64:
		return models.Number(t), nil
	case bool:
		return models.Bool(t), nil
	case nil:
		return models.Null(), nil
	default:
		return models.Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func (w *walker) object() (models.Value, error) {
	obj := models.NewObject()
	for {
		tok, err := w.next()
		if err != nil {
			return models.Value{}, err
		}
		if d, ok := tok.(gojson.Delim); ok && d == '}' {
			return models.FromObject(obj), nil
		}
		key, ok := tok.(string)
		if !ok {
			return models.Value{}, fmt.Errorf("expected object key, got %v", tok)
		}
		tok, err = w.next()
		if err != nil {
			return models.Value{}, err
		}
		val, err := w.value(tok)
		if err != nil {
			return models.Value{}, err
		}
		obj.Set(key, val)
	}
}

func (w *walker) array() (models.Value, error) {
	items := []models.Value{}
	for {
		tok, err := w.next()
		if err != nil {
			return models.Value{}, err
		}
		if d, ok := tok.(gojson.Delim); ok && d == ']' {
			return models.Array(items...), nil
		}
		val, err := w.value(tok)
		if err != nil {
			return models.Value{}, err
		}
		items = append(items, val)
	}
}

func number(text string) (models.Value, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return models.Value{}, fmt.Errorf("number %s out of range", text)
	}
	return models.Number(f), nil
}

// exceedsDepth scans for container nesting beyond max, ignoring brackets
// inside string literals. It returns the offset of the first offending bracket.
func exceedsDepth(data []byte, max int) (int, bool) {
	depth := 0
	inString := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > max {
				return i, true
			}
		case '}', ']':
			depth--
		}
	}
	return 0, false
}

func syntaxError(data []byte, err error) error {
	var se *gojson.SyntaxError
	if stderrors.As(err, &se) {
		return errors.NewParsingError(
			fmt.Sprintf("syntax error at %s: %s", position(data, int(se.Offset)), strings.TrimPrefix(se.Error(), "json: ")),
			errors.ErrInvalidJSON,
		)
	}
	return errors.NewParsingError(fmt.Sprintf("invalid document: %v", err), errors.ErrInvalidJSON)
}

// position renders a byte offset as "line L, column C".
func position(data []byte, offset int) string {
	if offset > len(data) {
		offset = len(data)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := offset - bytes.LastIndexByte(prefix, '\n')
	return fmt.Sprintf("line %d, column %d", line, col)
}
