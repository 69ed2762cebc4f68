// Package anchor loads Anchor IDL documents and encodes or decodes instruction
// payloads and account data against them.
//
// The document is treated as data: swapping the file changes account order,
// flags and layouts without rebuilding callers.
package anchor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOperation      = errors.New("unknown operation")
	ErrUnknownAccountType    = errors.New("unknown account type")
	ErrArgumentCountMismatch = errors.New("argument count mismatch")
	ErrInvalidAccountData    = errors.New("invalid account data")
	ErrInvalidInstruction    = errors.New("invalid instruction data")
	ErrValueOutOfRange       = errors.New("value out of range")
	ErrInvalidArgumentType   = errors.New("invalid argument type")
	ErrUnsupportedType       = errors.New("unsupported field type")
	ErrInvalidIDL            = errors.New("invalid idl")
)

// IDL is an Anchor interface description. Both the 0.30 layout (snake_case
// names, explicit discriminators, account layouts under "types") and the
// legacy layout (isMut/isSigner flags, inline account layouts) are accepted.
type IDL struct {
	Address      string           `json:"address" yaml:"address"`
	Metadata     Metadata         `json:"metadata" yaml:"metadata"`
	Instructions []InstructionDef `json:"instructions" yaml:"instructions"`
	Accounts     []AccountDef     `json:"accounts" yaml:"accounts"`
	Types        []TypeDef        `json:"types" yaml:"types"`
	Errors       []ErrorDef       `json:"errors" yaml:"errors"`

	instructions map[string]*InstructionDescriptor
	accounts     map[string]*AccountDescriptor
}

type Metadata struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Spec    string `json:"spec" yaml:"spec"`
}

type InstructionDef struct {
	Name          string        `json:"name" yaml:"name"`
	Discriminator Discriminator `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	Accounts      []AccountItem `json:"accounts" yaml:"accounts"`
	Args          []Field       `json:"args" yaml:"args"`
}

// AccountItem is one positional account reference of an instruction.
type AccountItem struct {
	Name     string `json:"name" yaml:"name"`
	Writable bool   `json:"writable,omitempty" yaml:"writable,omitempty"`
	Signer   bool   `json:"signer,omitempty" yaml:"signer,omitempty"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`

	// Legacy flags
	IsMut    bool `json:"isMut,omitempty" yaml:"isMut,omitempty"`
	IsSigner bool `json:"isSigner,omitempty" yaml:"isSigner,omitempty"`
}

type AccountDef struct {
	Name          string        `json:"name" yaml:"name"`
	Discriminator Discriminator `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`

	// Legacy documents carry the layout inline.
	Type *TypeBody `json:"type,omitempty" yaml:"type,omitempty"`
}

type TypeDef struct {
	Name string   `json:"name" yaml:"name"`
	Type TypeBody `json:"type" yaml:"type"`
}

type TypeBody struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Fields []Field `json:"fields" yaml:"fields"`
}

type Field struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

type ErrorDef struct {
	Code int    `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
	Msg  string `json:"msg" yaml:"msg"`
}

// InstructionDescriptor is the resolved, immutable view of one operation.
// Operation and account names are snake_case regardless of the document's
// layout.
type InstructionDescriptor struct {
	Name          string
	Discriminator [DiscriminatorSize]byte
	Accounts      []AccountItem
	Args          []Field
}

// AccountDescriptor is the resolved, immutable layout of one account type.
type AccountDescriptor struct {
	Name          string
	Discriminator [DiscriminatorSize]byte
	Fields        []Field
}

// ParseIDL parses and validates a JSON encoded IDL.
func ParseIDL(data []byte) (*IDL, error) {
	var idl IDL
	if err := json.Unmarshal(data, &idl); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal idl json")
	}
	if err := idl.init(); err != nil {
		return nil, err
	}
	return &idl, nil
}

// ParseIDLYAML parses and validates a YAML encoded IDL.
func ParseIDLYAML(data []byte) (*IDL, error) {
	var idl IDL
	if err := yaml.Unmarshal(data, &idl); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal idl yaml")
	}
	if err := idl.init(); err != nil {
		return nil, err
	}
	return &idl, nil
}

// LoadIDLFile reads an IDL document from disk. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func LoadIDLFile(path string) (*IDL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read idl file %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseIDLYAML(data)
	default:
		return ParseIDL(data)
	}
}

func (idl *IDL) init() error {
	types := make(map[string]TypeBody, len(idl.Types))
	for _, t := range idl.Types {
		types[t.Name] = t.Type
	}

	idl.instructions = make(map[string]*InstructionDescriptor, len(idl.Instructions))
	for _, def := range idl.Instructions {
		if def.Name == "" {
			return errors.Wrap(ErrInvalidIDL, "instruction without a name")
		}

		name := toSnakeCase(def.Name)
		if _, ok := idl.instructions[name]; ok {
			return errors.Wrapf(ErrInvalidIDL, "duplicate instruction %s", name)
		}

		desc := &InstructionDescriptor{
			Name: name,
			Args: make([]Field, len(def.Args)),
		}

		if len(def.Discriminator) == 0 {
			desc.Discriminator = InstructionDiscriminator(name)
		} else if len(def.Discriminator) != DiscriminatorSize {
			return errors.Wrapf(ErrInvalidIDL, "instruction %s: discriminator must be %d bytes", name, DiscriminatorSize)
		} else {
			copy(desc.Discriminator[:], def.Discriminator)
		}

		for i, f := range def.Args {
			normalized, err := f.Type.normalize()
			if err != nil {
				return errors.Wrapf(err, "instruction %s: arg %s", name, f.Name)
			}
			desc.Args[i] = Field{Name: toSnakeCase(f.Name), Type: normalized}
		}

		for _, a := range def.Accounts {
			if a.Name == "" {
				return errors.Wrapf(ErrInvalidIDL, "instruction %s: account without a name", name)
			}
			desc.Accounts = append(desc.Accounts, AccountItem{
				Name:     toSnakeCase(a.Name),
				Writable: a.Writable || a.IsMut,
				Signer:   a.Signer || a.IsSigner,
				Address:  a.Address,
			})
		}

		idl.instructions[name] = desc
	}

	idl.accounts = make(map[string]*AccountDescriptor, len(idl.Accounts))
	for _, def := range idl.Accounts {
		if _, ok := idl.accounts[def.Name]; ok {
			return errors.Wrapf(ErrInvalidIDL, "duplicate account %s", def.Name)
		}

		body, ok := types[def.Name]
		if def.Type != nil {
			body, ok = *def.Type, true
		}
		if !ok {
			return errors.Wrapf(ErrInvalidIDL, "account %s has no layout", def.Name)
		}
		if body.Kind != "struct" {
			return errors.Wrapf(ErrInvalidIDL, "account %s: unsupported kind %q", def.Name, body.Kind)
		}

		desc := &AccountDescriptor{
			Name:   def.Name,
			Fields: make([]Field, len(body.Fields)),
		}

		if len(def.Discriminator) == 0 {
			desc.Discriminator = AccountDiscriminator(def.Name)
		} else if len(def.Discriminator) != DiscriminatorSize {
			return errors.Wrapf(ErrInvalidIDL, "account %s: discriminator must be %d bytes", def.Name, DiscriminatorSize)
		} else {
			copy(desc.Discriminator[:], def.Discriminator)
		}

		for i, f := range body.Fields {
			normalized, err := f.Type.normalize()
			if err != nil {
				return errors.Wrapf(err, "account %s: field %s", def.Name, f.Name)
			}
			desc.Fields[i] = Field{Name: toSnakeCase(f.Name), Type: normalized}
		}

		idl.accounts[def.Name] = desc
	}

	return nil
}

// Instruction returns the descriptor for the named operation. Legacy camelCase
// names resolve to the same descriptor as their snake_case form.
func (idl *IDL) Instruction(name string) (*InstructionDescriptor, error) {
	desc, ok := idl.instructions[toSnakeCase(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOperation, "%q", name)
	}
	return desc, nil
}

// Account returns the layout of the named account type.
func (idl *IDL) Account(name string) (*AccountDescriptor, error) {
	desc, ok := idl.accounts[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAccountType, "%q", name)
	}
	return desc, nil
}

// InstructionNames returns the operations in document order.
func (idl *IDL) InstructionNames() []string {
	names := make([]string, len(idl.Instructions))
	for i, def := range idl.Instructions {
		names[i] = toSnakeCase(def.Name)
	}
	return names
}

// ErrorByCode looks up a program error declared by the document.
func (idl *IDL) ErrorByCode(code int) (ErrorDef, bool) {
	for _, e := range idl.Errors {
		if e.Code == code {
			return e, true
		}
	}
	return ErrorDef{}, false
}

func toSnakeCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
