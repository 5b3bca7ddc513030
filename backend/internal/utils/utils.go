package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	sanitize "github.com/msgboard/msgboard/backend/internal/service/utils"
	"github.com/msgboard/msgboard/shared/errors"
)

const (
	MaxBoardNameLength = 50
	boardNameForbidden = "/?#"
	boardNameRule      = "board_name"
	scopeName          = "name"
	scopeBody          = "request_body"
)

// isBoardName allows printable ASCII without whitespace and without URL delimiters.
func isBoardName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c > '~' || strings.IndexByte(boardNameForbidden, c) >= 0 {
			return false
		}
	}
	return true
}

type BoardNameValidator struct {
	validate *validator.Validate
}

func NewBoardNameValidator() *BoardNameValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation(boardNameRule, isBoardName); err != nil {
		panic(err)
	}
	return &BoardNameValidator{validate: v}
}

func (b *BoardNameValidator) Name(name string) error {
	err := b.validate.Var(name, fmt.Sprintf("required,max=%d,%s", MaxBoardNameLength, boardNameRule))
	if err == nil {
		return nil
	}
	return &errors.ValidationError{
		Scope:   scopeName,
		Message: fmt.Sprintf("Board name must be 1-%d printable characters without spaces, '/', '?' or '#'.", MaxBoardNameLength),
	}
}

// TextValidator passes thread and reply bodies through as posted, empty ones
// included. Both the length cap and markup stripping are opt-in.
type TextValidator struct {
	MaxLength int // in runes, 0 means unbounded
	Sanitize  bool
}

func NewTextValidator(maxLength int, sanitizeText bool) *TextValidator {
	return &TextValidator{MaxLength: maxLength, Sanitize: sanitizeText}
}

func (v *TextValidator) Text(text string) (string, error) {
	if v.MaxLength > 0 && utf8.RuneCountInString(text) > v.MaxLength {
		return "", &errors.ValidationError{
			Scope:   scopeBody,
			Message: fmt.Sprintf("Text is too long. Maximum is %d characters.", v.MaxLength),
		}
	}
	if v.Sanitize {
		text = sanitize.SanitizeText(text)
	}
	return text, nil
}
