package errors

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	root := FileNotFound{Path: "/missing"}
	err := WithContext(WithContext(root, "read file"), "parse")

	assert.Equal(t, `parse: read file: "/missing" does not exist`, err.Error())
	assert.Equal(t, root, RootCause(err))
	assert.Equal(t, root, pkgerrors.Cause(err))

	var notFound FileNotFound
	assert.True(t, As(err, &notFound))
	assert.Equal(t, "/missing", notFound.Path)

	assert.Nil(t, WithContext(nil, "ignored"))
}

func TestGetFriendlyMessage(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expMsg string
		expOK  bool
	}{
		{
			name:   "Friendly",
			err:    NewFriendlyError("hello %s", "world"),
			expMsg: "hello world",
			expOK:  true,
		},
		{
			name:   "WrappedFriendly",
			err:    WithContext(NewFriendlyError("inner"), "outer"),
			expMsg: "inner",
			expOK:  true,
		},
		{
			name:  "NotFriendly",
			err:   WithContext(New("boom"), "outer"),
			expOK: false,
		},
		{
			name:   "MalformedRegistry",
			err:    MalformedRegistry{Path: "users.json", Err: New("bad")},
			expMsg: MalformedRegistry{Path: "users.json", Err: New("bad")}.FriendlyMessage(),
			expOK:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			msg, ok := GetFriendlyMessage(test.err)
			assert.Equal(t, test.expOK, ok)
			assert.Equal(t, test.expMsg, msg)
		})
	}
}
