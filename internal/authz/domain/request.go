package domain

import (
	"fmt"
	"strings"

	policyDomain "github.com/allisson/busguard/internal/policy/domain"
)

// MessageType identifies the bus message kind being authorized. Only method
// calls and signals are subject to policy; other kinds pass through.
type MessageType string

const (
	MessageTypeMethodCall   MessageType = "method_call"
	MessageTypeSignal       MessageType = "signal"
	MessageTypeMethodReturn MessageType = "method_return"
	MessageTypeError        MessageType = "error"
)

// Message is the wire-level description of a bus message presented for
// authorization. Args carries the string arguments the engine may need to
// reparse a properties request; non-string arguments are irrelevant here.
type Message struct {
	Type       MessageType `json:"type"`
	ObjectPath string      `json:"object_path"`
	Interface  string      `json:"interface"`
	Member     string      `json:"member"`
	Args       []string    `json:"args,omitempty"`
}

// Request is a normalized authorization request. For requests on the
// properties interface the interface and member name refer to the underlying
// property, not the properties call that carried it.
type Request struct {
	Type            MessageType
	ObjectPath      string
	InterfaceName   string
	MemberName      string
	MemberType      policyDomain.MemberType
	Outgoing        bool
	PropertyRequest bool
	SetProperty     bool
}

// ClassifyMessage turns a bus message into an authorization request. Messages
// on the properties interface are reparsed so that the request targets the
// property named in the arguments. Returns ErrInvalidData when a properties
// message is malformed.
func ClassifyMessage(outgoing bool, msg Message) (*Request, error) {
	req := &Request{
		Type:       msg.Type,
		ObjectPath: msg.ObjectPath,
		Outgoing:   outgoing,
	}
	if msg.Interface == InterfaceProperties {
		if err := classifyProperties(msg, req); err != nil {
			return nil, err
		}
		return req, nil
	}
	req.InterfaceName = msg.Interface
	req.MemberName = msg.Member
	switch msg.Type {
	case MessageTypeSignal:
		req.MemberType = policyDomain.MemberTypeSignal
	default:
		req.MemberType = policyDomain.MemberTypeMethodCall
	}
	return req, nil
}

// classifyProperties maps a properties-interface call onto the property it
// manipulates. The interface name always travels as the first argument; Get
// and Set carry the property name as the second. The member name prefix
// decides the sub-kind, so GetAll must be tested before Get.
func classifyProperties(msg Message, req *Request) error {
	req.PropertyRequest = true
	switch {
	case strings.HasPrefix(msg.Member, "GetAll"):
		if len(msg.Args) < 1 {
			return fmt.Errorf("%w: GetAll requires an interface argument", ErrInvalidData)
		}
		req.InterfaceName = msg.Args[0]
		req.MemberName = ""
		req.MemberType = policyDomain.MemberTypeProperty
	case strings.HasPrefix(msg.Member, "Get"), strings.HasPrefix(msg.Member, "Set"):
		if len(msg.Args) < 2 {
			return fmt.Errorf("%w: %s requires interface and property arguments", ErrInvalidData, msg.Member)
		}
		req.InterfaceName = msg.Args[0]
		req.MemberName = msg.Args[1]
		req.MemberType = policyDomain.MemberTypeProperty
		req.SetProperty = strings.HasPrefix(msg.Member, "Set")
	case strings.HasPrefix(msg.Member, "PropertiesChanged"):
		if len(msg.Args) < 1 {
			return fmt.Errorf("%w: PropertiesChanged requires an interface argument", ErrInvalidData)
		}
		req.InterfaceName = msg.Args[0]
		req.MemberName = ""
		req.MemberType = policyDomain.MemberTypeSignal
	default:
		return fmt.Errorf("%w: unknown properties member %q", ErrInvalidData, msg.Member)
	}
	return nil
}

// NewPropertyRequest builds the request used to pre-authorize a property read
// before its value is disclosed.
func NewPropertyRequest(objectPath, interfaceName, propertyName string) *Request {
	return &Request{
		Type:            MessageTypeMethodCall,
		ObjectPath:      objectPath,
		InterfaceName:   interfaceName,
		MemberName:      propertyName,
		MemberType:      policyDomain.MemberTypeProperty,
		PropertyRequest: true,
	}
}

// RequiredRight derives the action the policy must grant for the request. A
// zero return means no policy right is needed and the request is allowed
// outright.
func RequiredRight(req *Request) policyDomain.Action {
	switch req.MemberType {
	case policyDomain.MemberTypeProperty:
		if req.SetProperty {
			if req.Outgoing {
				return policyDomain.ActionProvide
			}
			return policyDomain.ActionModify
		}
		if req.Outgoing {
			return policyDomain.ActionProvide
		}
		return policyDomain.ActionObserve
	case policyDomain.MemberTypeMethodCall:
		if req.Outgoing {
			return policyDomain.ActionProvide
		}
		return policyDomain.ActionModify
	case policyDomain.MemberTypeSignal:
		if req.Outgoing {
			return policyDomain.ActionObserve
		}
		return policyDomain.ActionProvide
	}
	return 0
}
