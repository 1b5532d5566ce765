package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var ErrInvalidObjectName = errors.New("invalid object name")

// NamePolicy decides how client supplied file names map to object names.
type NamePolicy string

const (
	// NamePolicyVerbatim stores objects under the name exactly as received.
	NamePolicyVerbatim NamePolicy = "verbatim"
	// NamePolicyBase keeps only the last path element of the name.
	NamePolicyBase NamePolicy = "base"
)

// ParseNamePolicy maps a configuration value to a NamePolicy.
func ParseNamePolicy(s string) (NamePolicy, error) {
	switch NamePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamePolicyVerbatim:
		return NamePolicyVerbatim, nil
	case NamePolicyBase:
		return NamePolicyBase, nil
	default:
		return "", fmt.Errorf("unknown name policy: %s", s)
	}
}

// Apply returns the object name for a file name.
func (p NamePolicy) Apply(name string) (string, error) {
	if p != NamePolicyBase {
		return name, nil
	}

	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch strings.TrimSpace(base) {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectName, name)
	}
	return base, nil
}

type namedClient struct {
	Client
	policy NamePolicy
}

// WithNamePolicy wraps c so every PutObject name goes through policy.
func WithNamePolicy(c Client, policy NamePolicy) Client {
	if policy == NamePolicyVerbatim || policy == "" {
		return c
	}
	return &namedClient{Client: c, policy: policy}
}

func (n *namedClient) PutObject(ctx context.Context, container, name string, body io.Reader, opts PutOptions) (int64, error) {
	objectName, err := n.policy.Apply(name)
	if err != nil {
		return 0, err
	}
	return n.Client.PutObject(ctx, container, objectName, body, opts)
}
