package provider

import (
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
)

// Method is an HTTP verb accepted by CallAPI.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// ParseMethod maps a case-insensitive verb name onto a Method.
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(name)))
	if !m.Valid() {
		return "", apperrors.Wrapf(apperrors.ErrUnsupportedMethod, "%q", name)
	}
	return m, nil
}

func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

func (m Method) String() string {
	return string(m)
}
