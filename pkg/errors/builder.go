package errors

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
)

// ErrnoBuilder assembles and registers an Errno. It defaults to HTTP 500 and
// gRPC Internal.
type ErrnoBuilder struct {
	e Errno
}

// NewBuilder starts an Errno with code MakeCode(service, category, sequence).
func NewBuilder(service, category, sequence int) *ErrnoBuilder {
	return &ErrnoBuilder{e: Errno{
		Code:     MakeCode(service, category, sequence),
		HTTP:     http.StatusInternalServerError,
		GRPCCode: codes.Internal,
	}}
}

// HTTP sets the HTTP status.
func (b *ErrnoBuilder) HTTP(status int) *ErrnoBuilder {
	b.e.HTTP = status
	return b
}

// GRPC sets the gRPC code.
func (b *ErrnoBuilder) GRPC(code codes.Code) *ErrnoBuilder {
	b.e.GRPCCode = code
	return b
}

// Message sets the English and Chinese messages.
func (b *ErrnoBuilder) Message(en, zh string) *ErrnoBuilder {
	b.e.MessageEN, b.e.MessageZH = en, zh
	return b
}

// Build registers the Errno. It fails without an English message or when the
// code is taken.
func (b *ErrnoBuilder) Build() (*Errno, error) {
	if b.e.MessageEN == "" {
		return nil, errors.New("errno needs an English message")
	}
	e := b.e
	if err := defaultRegistry.add(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// MustBuild is Build that panics.
func (b *ErrnoBuilder) MustBuild() *Errno {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// NewRequestError starts a 400 / InvalidArgument errno.
func NewRequestError(service, sequence int) *ErrnoBuilder {
	return NewBuilder(service, CategoryRequest, sequence).HTTP(http.StatusBadRequest).GRPC(codes.InvalidArgument)
}

// NewNotFoundError starts a 404 / NotFound errno.
func NewNotFoundError(service, sequence int) *ErrnoBuilder {
	return NewBuilder(service, CategoryResource, sequence).HTTP(http.StatusNotFound).GRPC(codes.NotFound)
}

// NewDatabaseError starts a 500 / Internal errno for document store failures.
func NewDatabaseError(service, sequence int) *ErrnoBuilder {
	return NewBuilder(service, CategoryDatabase, sequence)
}
