package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pgrel/relation"
)

// relationInputSchema constrains bag files before they reach the
// engine. Bags are flat string-to-string maps; anything else in the
// file is an authoring mistake worth rejecting up front.
const relationInputSchema = `
#Bag: {[string]: string}

#RelationInput: {
	relation_id: string & !=""
	client_unit?: #Bag
	client_app?:  #Bag
	client_peer?: #Bag
	server_app?:  #Bag
	server_unit?: #Bag
}

#Batch: {
	relations: [...#RelationInput]
}
`

type relationInput struct {
	RelationID string            `yaml:"relation_id"`
	ClientUnit map[string]string `yaml:"client_unit"`
	ClientApp  map[string]string `yaml:"client_app"`
	ClientPeer map[string]string `yaml:"client_peer"`
	ServerApp  map[string]string `yaml:"server_app"`
	ServerUnit map[string]string `yaml:"server_unit"`
}

type batchInput struct {
	Relations []relationInput `yaml:"relations"`
}

func (in relationInput) bags() relation.Bags {
	return relation.Bags{
		RelationID: in.RelationID,
		ClientUnit: relation.Bag(in.ClientUnit),
		ClientApp:  relation.Bag(in.ClientApp),
		ClientPeer: relation.Bag(in.ClientPeer),
		ServerApp:  relation.Bag(in.ServerApp),
		ServerUnit: relation.Bag(in.ServerUnit),
	}
}

// LoadBags reads and validates a single-relation bag file.
func LoadBags(path string) (relation.Bags, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return relation.Bags{}, fmt.Errorf("read bags file: %w", err)
	}
	if err := validateInput(data, "#RelationInput"); err != nil {
		return relation.Bags{}, fmt.Errorf("validate %s: %w", path, err)
	}
	var in relationInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return relation.Bags{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return in.bags(), nil
}

// LoadBatch reads and validates a multi-relation batch file with a
// top-level relations list.
func LoadBatch(path string) (map[string]relation.Bags, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	if err := validateInput(data, "#Batch"); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	var in batchInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make(map[string]relation.Bags, len(in.Relations))
	for _, r := range in.Relations {
		if _, ok := out[r.RelationID]; ok {
			return nil, fmt.Errorf("duplicate relation_id %q in %s", r.RelationID, path)
		}
		out[r.RelationID] = r.bags()
	}
	return out, nil
}

// validateInput unifies the decoded YAML with the named CUE definition
// and reports the first constraint violation.
func validateInput(data []byte, definition string) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(relationInputSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup %s: %w", definition, err)
	}
	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
