package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
)

// Method is one callable remote procedure known to the registry.
type Method struct {
	Service  string // fully qualified service name, e.g. "user.v1.UserService"
	Name     string // procedure name, e.g. "GetUser"
	Request  string // fully qualified request message, when declared in a .proto file
	Response string // fully qualified response message, when declared in a .proto file
	Source   string // file the method was loaded from; empty when registered by name
}

// FullName returns the canonical method name: Service.Name, or Name alone
// for methods registered without a service.
func (m Method) FullName() string {
	if m.Service == "" {
		return m.Name
	}
	return m.Service + "." + m.Name
}

// Aliases returns every name a FastRPC call may use for m. Servers often
// expose "Service.Method" without the package prefix, and lookups are
// case-insensitive, so "userService.getUser" matches "UserService.GetUser".
func (m Method) Aliases() []string {
	aliases := []string{m.FullName()}
	if m.Service != "" {
		short := m.Service[strings.LastIndex(m.Service, ".")+1:]
		if short != m.Service {
			aliases = append(aliases, short+"."+m.Name)
		}
	}
	return aliases
}

// Registry is a catalog of remote method names. It is populated from
// service definitions in .proto files or from plain method names, and
// is used to flag calls to methods nobody declared.
type Registry struct {
	// ProtoDirectories are searched, in order, to resolve imports.
	ProtoDirectories []string

	mu              sync.RWMutex
	methods         map[string]*Method // lowercased alias -> method
	ordered         []*Method
	parsedProtoBody map[string]*protoparserparser.Proto // file path -> parsed body
	protoEntities   map[string]*protoFileEntity
}

func NewRegistry(protoDirectories ...string) *Registry {
	return &Registry{ProtoDirectories: protoDirectories}
}

func (r *Registry) init() {
	if r.methods == nil {
		r.methods = make(map[string]*Method)
	}
	if r.parsedProtoBody == nil {
		r.parsedProtoBody = make(map[string]*protoparserparser.Proto)
	}
	if r.protoEntities == nil {
		r.protoEntities = make(map[string]*protoFileEntity)
	}
}

// LoadSchema Given a path it will recursively scan all *proto files inside it and register every rpc they declare
func (r *Registry) LoadSchema(protoPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()

	// Check if the path exists
	info, err := os.Stat(protoPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	var files []string
	if !info.IsDir() {
		if !strings.HasSuffix(protoPath, ".proto") {
			return fmt.Errorf("file %s is not a .proto file", protoPath)
		}
		files = append(files, protoPath)
	} else {
		err = filepath.WalkDir(protoPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			// Skip directories and non-proto files
			if d.IsDir() || !strings.HasSuffix(path, ".proto") {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to walk directory: %w", err)
		}
	}

	// Imports resolve against the configured directories first, then the
	// directory being loaded.
	searchDir := protoPath
	if !info.IsDir() {
		searchDir = filepath.Dir(protoPath)
	}
	dirs := append(append([]string{}, r.ProtoDirectories...), searchDir)

	for _, file := range files {
		loaded, err := r.getAllProtoInfo(file, dirs)
		if err != nil {
			return fmt.Errorf("failed to load proto file %s: %w", file, err)
		}
		for _, path := range loaded {
			r.registerServices(path)
		}
	}
	return nil
}

// registerServices adds every rpc of every service declared in a parsed file
func (r *Registry) registerServices(protoFile string) {
	entity := r.protoEntities[protoFile]
	if entity == nil || entity.registered {
		return
	}
	entity.registered = true

	messages := r.allMessages()
	for _, body := range r.parsedProtoBody[protoFile].ProtoBody {
		service, ok := body.(*protoparserparser.Service)
		if !ok {
			continue
		}
		serviceName := getFullName(entity.pkg, service.ServiceName)
		for _, element := range service.ServiceBody {
			rpc, ok := element.(*protoparserparser.RPC)
			if !ok {
				continue
			}
			method := &Method{
				Service: serviceName,
				Name:    rpc.RPCName,
				Source:  protoFile,
			}
			if rpc.RPCRequest != nil {
				method.Request = resolveOrKeep(rpc.RPCRequest.MessageType, entity.pkg, messages)
			}
			if rpc.RPCResponse != nil {
				method.Response = resolveOrKeep(rpc.RPCResponse.MessageType, entity.pkg, messages)
			}
			r.add(method)
		}
	}
}

// allMessages returns the fully qualified names of every message parsed so far
func (r *Registry) allMessages() map[string]struct{} {
	all := make(map[string]struct{})
	for _, entity := range r.protoEntities {
		for _, name := range entity.messages {
			all[name] = struct{}{}
		}
	}
	return all
}

// Register adds methods by name. A name containing a dot splits into
// service and procedure at the last dot.
func (r *Registry) Register(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		method := &Method{Name: name}
		if i := strings.LastIndex(name, "."); i > 0 && i < len(name)-1 {
			method.Service, method.Name = name[:i], name[i+1:]
		}
		r.add(method)
	}
}

func (r *Registry) add(method *Method) {
	key := strings.ToLower(method.FullName())
	if existing, ok := r.methods[key]; ok && existing.FullName() == method.FullName() {
		return
	}
	r.ordered = append(r.ordered, method)
	for _, alias := range method.Aliases() {
		aliasKey := strings.ToLower(alias)
		// a fully qualified name beats a short alias for the same key
		if _, taken := r.methods[aliasKey]; taken && alias != method.FullName() {
			continue
		}
		r.methods[aliasKey] = method
	}
}

func getFullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// Lookup retrieves a method by any of its aliases, ignoring case
func (r *Registry) Lookup(name string) (Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if method, ok := r.methods[strings.ToLower(name)]; ok {
		return *method, true
	}
	return Method{}, false
}

// HasMethod reports whether name resolves to a registered method
func (r *Registry) HasMethod(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// GetMethod retrieves a method by name
func (r *Registry) GetMethod(name string) (Method, error) {
	method, ok := r.Lookup(name)
	if !ok {
		return Method{}, fmt.Errorf("method not found: %s", name)
	}
	return method, nil
}

// Len returns the number of registered methods
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// ListMethods returns all registered canonical method names, sorted
func (r *Registry) ListMethods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ordered))
	for _, method := range r.ordered {
		names = append(names, method.FullName())
	}
	sort.Strings(names)
	return names
}

// Methods returns a copy of every registered method in registration order
func (r *Registry) Methods() []Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Method, len(r.ordered))
	for i, method := range r.ordered {
		out[i] = *method
	}
	return out
}
