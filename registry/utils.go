package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
)

// protoFileEntity is what the registry keeps about each parsed file
type protoFileEntity struct {
	pkg        string
	imports    []string
	messages   []string // fully qualified, nested ones included
	registered bool
}

// getAllProtoInfo uses DFS to parse protoFile and everything it imports, returning the files in visit order
func (r *Registry) getAllProtoInfo(protoFile string, dirs []string) ([]string, error) {
	visited := make(map[string]struct{}) // to make sure we don't end up in a loop
	result := make([]string, 0)

	var dfs func(protoFile string) error
	dfs = func(protoFile string) error {
		if _, ok := visited[protoFile]; ok {
			return nil
		}
		visited[protoFile] = struct{}{}

		if entity, ok := r.protoEntities[protoFile]; ok {
			// parsed by an earlier LoadSchema; its imports are already known
			for _, imported := range entity.imports {
				if err := dfs(imported); err != nil {
					return err
				}
			}
			result = append(result, protoFile)
			return nil
		}

		protoBytes, err := os.ReadFile(protoFile)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		parsedBody, err := protoparser.Parse(bytes.NewBuffer(protoBytes))
		if err != nil {
			return err
		}

		entity := &protoFileEntity{
			imports: make([]string, 0),
		}
		for _, body := range parsedBody.ProtoBody {
			if pkg, ok := body.(*protoparserparser.Package); ok {
				entity.pkg = pkg.Name
			}
		}
		for _, body := range parsedBody.ProtoBody {
			switch b := body.(type) {
			case *protoparserparser.Import: // resolve relation for each imports
				importPath := strings.Trim(b.Location, `"`)
				// well-known types declare no services
				if strings.HasPrefix(importPath, "google/protobuf/") {
					continue
				}
				fullImportPath, err := findIfProtoExists(importPath, dirs)
				if err != nil {
					return err
				}
				entity.imports = append(entity.imports, fullImportPath)
				if err = dfs(fullImportPath); err != nil {
					return err
				}
			case *protoparserparser.Message:
				entity.messages = collectMessages(entity.pkg, b, entity.messages)
			}
		}

		r.parsedProtoBody[protoFile] = parsedBody
		r.protoEntities[protoFile] = entity
		// imports first, so their messages resolve when this file registers
		result = append(result, protoFile)
		return nil
	}

	if err := dfs(filepath.Clean(protoFile)); err != nil {
		return nil, err
	}
	return result, nil
}

// collectMessages appends the fully qualified names of msg and its nested messages
func collectMessages(prefix string, msg *protoparserparser.Message, out []string) []string {
	fullName := getFullName(prefix, msg.MessageName)
	out = append(out, fullName)
	for _, body := range msg.MessageBody {
		if nested, ok := body.(*protoparserparser.Message); ok {
			out = collectMessages(fullName, nested, out)
		}
	}
	return out
}

func findIfProtoExists(protoPath string, dirs []string) (string, error) {
	var (
		fullPath      string
		fullProtoPath string
		err           error
	)
	protoPath = strings.Trim(protoPath, `"`)
	for _, dir := range dirs {
		fullPath = filepath.Join(dir, protoPath)
		// Check if the path exists
		_, err = os.Stat(fullPath)
		if err == nil {
			fullProtoPath = fullPath
			break
		}
	}
	if fullProtoPath == "" {
		return "", fmt.Errorf("path does not exist: %s %w", protoPath, err)
	}
	if !strings.HasSuffix(fullProtoPath, ".proto") {
		return "", fmt.Errorf("is not a .proto file %s", fullPath)
	}
	return fullProtoPath, nil
}

// resolveOrKeep resolves a request/response type to its fully qualified
// name, falling back to the name as written when it is not declared in
// any loaded file.
func resolveOrKeep(typeName, pkg string, messages map[string]struct{}) string {
	if resolved, err := getReferencedType(typeName, pkg, messages); err == nil {
		return resolved
	}
	return strings.TrimPrefix(typeName, ".")
}

/*
This helper function will return the entity for any referenced type ,
Be it top/file,nested or imported entities.If not found will return an error
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func getReferencedType(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, error) {
	// check if fully qualified prefixed by dot
	if strings.HasPrefix(typeName, ".") {
		return getFullyQualifiedType(typeName, allResolvedEntities)
	}
	// try resolving from the package scope outwards
	if result, ok := splitNameAndCheck(typeName, prefix, allResolvedEntities); ok {
		return result, nil
	}
	// check if the entity is referenced to other packages via packageName
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// splitNameAndCheck splits the prefixName and tries to append the typeName and find the entity for resolution
// it also tries the find the entities defined using relative path
func splitNameAndCheck(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, bool) {
	prefixSplit := strings.Split(prefix, ".")

	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if _, ok := allResolvedEntities[entityName]; ok {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func getFullyQualifiedType(typeName string, allResolvedEntities map[string]struct{}) (string, error) {
	typeName = strings.TrimPrefix(typeName, ".")
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve fully qualified (dot prefixed) type name: %s", typeName)
}
