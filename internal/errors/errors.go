package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidCharacter is returned when a document, query or stop word contains a control character
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrDuplicateID is returned when a document id is already taken
	ErrDuplicateID = errors.New("duplicate document id")

	// ErrNegativeID is returned when a document id is less than zero
	ErrNegativeID = errors.New("negative document id")

	// ErrEmptyMinusTerm is returned when a query contains a lone "-"
	ErrEmptyMinusTerm = errors.New("empty minus term")

	// ErrDoubleMinus is returned when a query term starts with "--"
	ErrDoubleMinus = errors.New("double minus")

	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidInput is returned when settings or call arguments fail validation
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidCharacterError reports the first control character found in a text
type InvalidCharacterError struct {
	Text     string
	Position int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("text %q contains control character 0x%02x at byte %d", e.Text, e.Text[e.Position], e.Position)
}

func (e *InvalidCharacterError) Is(target error) bool {
	return target == ErrInvalidCharacter
}

// NewInvalidCharacterError creates a new InvalidCharacterError
func NewInvalidCharacterError(text string, position int) *InvalidCharacterError {
	return &InvalidCharacterError{Text: text, Position: position}
}

// DuplicateIDError represents an attempt to add a document under a taken id
type DuplicateIDError struct {
	DocumentID int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("document with ID %d already exists", e.DocumentID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// NewDuplicateIDError creates a new DuplicateIDError
func NewDuplicateIDError(documentID int) *DuplicateIDError {
	return &DuplicateIDError{DocumentID: documentID}
}

// NegativeIDError represents an attempt to add a document with an id below zero
type NegativeIDError struct {
	DocumentID int
}

func (e *NegativeIDError) Error() string {
	return fmt.Sprintf("document ID %d must not be negative", e.DocumentID)
}

func (e *NegativeIDError) Is(target error) bool {
	return target == ErrNegativeID
}

// NewNegativeIDError creates a new NegativeIDError
func NewNegativeIDError(documentID int) *NegativeIDError {
	return &NegativeIDError{DocumentID: documentID}
}

// EmptyMinusTermError represents a query holding a "-" with nothing after it
type EmptyMinusTermError struct {
	Query string
}

func (e *EmptyMinusTermError) Error() string {
	return fmt.Sprintf("query %q has no text after minus", e.Query)
}

func (e *EmptyMinusTermError) Is(target error) bool {
	return target == ErrEmptyMinusTerm
}

// NewEmptyMinusTermError creates a new EmptyMinusTermError
func NewEmptyMinusTermError(query string) *EmptyMinusTermError {
	return &EmptyMinusTermError{Query: query}
}

// DoubleMinusError represents a query term with more than one leading minus
type DoubleMinusError struct {
	Term string
}

func (e *DoubleMinusError) Error() string {
	return fmt.Sprintf("query term %q has multiple minuses", e.Term)
}

func (e *DoubleMinusError) Is(target error) bool {
	return target == ErrDoubleMinus
}

// NewDoubleMinusError creates a new DoubleMinusError
func NewDoubleMinusError(term string) *DoubleMinusError {
	return &DoubleMinusError{Term: term}
}

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID int
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with ID %d not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID int) *DocumentNotFoundError {
	return &DocumentNotFoundError{DocumentID: documentID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
