package value

// RPCKind identifies the envelope variant
type RPCKind string

const (
	KindCall    RPCKind = "call"
	KindSuccess RPCKind = "success"
	KindFault   RPCKind = "fault"
)

// RPC is a decoded FastRPC envelope: one of Call, Success or Fault.
type RPC interface {
	RPCKind() RPCKind
	isRPC()
}

// Call is a method call request.
type Call struct {
	Method   string
	Argument Value
}

// Success is a method response carrying one result value.
type Success struct {
	Result Value
}

// Fault is an error response.
type Fault struct {
	Code    int32
	Message string
}

func (Call) RPCKind() RPCKind    { return KindCall }
func (Success) RPCKind() RPCKind { return KindSuccess }
func (Fault) RPCKind() RPCKind   { return KindFault }

func (Call) isRPC()    {}
func (Success) isRPC() {}
func (Fault) isRPC()   {}

// EqualRPC reports whether two envelopes hold the same content.
func EqualRPC(a, b RPC) bool {
	switch a := a.(type) {
	case Call:
		b, ok := b.(Call)
		return ok && a.Method == b.Method && a.Argument.Equal(b.Argument)
	case Success:
		b, ok := b.(Success)
		return ok && a.Result.Equal(b.Result)
	case Fault:
		b, ok := b.(Fault)
		return ok && a == b
	}
	return false
}
