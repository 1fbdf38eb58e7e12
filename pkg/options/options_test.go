package options

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

type fakeOptions struct{ errs []error }

func (f *fakeOptions) Validate() []error                  { return f.errs }
func (f *fakeOptions) AddFlags(*pflag.FlagSet, ...string) {}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join())
	assert.Equal(t, "a.", Join("a"))
	assert.Equal(t, "a.b.", Join("a", "b"))
	assert.Equal(t, "store.", Join("store."))
}

func TestValidateAll(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	errs := ValidateAll(&fakeOptions{errs: []error{e1}}, nil, &fakeOptions{}, &fakeOptions{errs: []error{e2}})
	assert.Equal(t, []error{e1, e2}, errs)
}
