// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	authzDomain "github.com/allisson/busguard/internal/authz/domain"
	customValidation "github.com/allisson/busguard/internal/validation"
)

// MessageRequest carries the bus message coordinates for a check.
type MessageRequest struct {
	Type       string   `json:"type"`
	ObjectPath string   `json:"object_path"`
	Interface  string   `json:"interface"`
	Member     string   `json:"member,omitempty"`
	Args       []string `json:"args,omitempty"`
}

// CheckRequest contains the parameters for a message authorization check.
type CheckRequest struct {
	PeerID        string         `json:"peer_id"`
	Outgoing      bool           `json:"outgoing"`
	Authenticated bool           `json:"authenticated"`
	Message       MessageRequest `json:"message"`
}

// Validate checks if the check request is valid.
func (r *CheckRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.PeerID, validation.Required, is.UUID),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(&r.Message,
		validation.Field(&r.Message.Type,
			validation.Required,
			validation.In(
				string(authzDomain.MessageTypeMethodCall),
				string(authzDomain.MessageTypeSignal),
				string(authzDomain.MessageTypeMethodReturn),
				string(authzDomain.MessageTypeError),
			),
		),
		validation.Field(&r.Message.ObjectPath, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Message.Interface, validation.Required, customValidation.NotBlank),
	)
}

// ToMessage converts the request into a domain message.
func (r *CheckRequest) ToMessage() authzDomain.Message {
	return authzDomain.Message{
		Type:       authzDomain.MessageType(r.Message.Type),
		ObjectPath: r.Message.ObjectPath,
		Interface:  r.Message.Interface,
		Member:     r.Message.Member,
		Args:       r.Message.Args,
	}
}

// CheckPropertyRequest contains the parameters for a single-property read check.
type CheckPropertyRequest struct {
	PeerID        string `json:"peer_id"`
	ObjectPath    string `json:"object_path"`
	InterfaceName string `json:"interface"`
	PropertyName  string `json:"property"`
}

// Validate checks if the check property request is valid.
func (r *CheckPropertyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PeerID, validation.Required, is.UUID),
		validation.Field(&r.ObjectPath, validation.Required, customValidation.NotBlank),
		validation.Field(&r.InterfaceName, validation.Required, customValidation.NotBlank),
		validation.Field(&r.PropertyName, validation.Required, customValidation.NotBlank),
	)
}
