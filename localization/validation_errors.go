package localization

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrValidation is matched by every ValidationException.
var ErrValidation = errors.New("validation failed")

// ValidationError is the raw error produced by a Validator. Constraint
// messages are expected to be encoded messages.
type ValidationError struct {
	Property    string
	Value       any
	Children    []*ValidationError
	Constraints map[string]string
}

// ErrorNode is one node of a localized validation report.
type ErrorNode struct {
	Property    string            `json:"property"`
	Children    []*ErrorNode      `json:"children"`
	Constraints map[string]string `json:"constraints"`
}

// ErrorNodeFromValidationError converts a raw validation error and its children.
func ErrorNodeFromValidationError(e *ValidationError) *ErrorNode {
	node := &ErrorNode{
		Property:    e.Property,
		Children:    make([]*ErrorNode, 0, len(e.Children)),
		Constraints: map[string]string{},
	}

	for _, child := range e.Children {
		if child != nil {
			node.Children = append(node.Children, ErrorNodeFromValidationError(child))
		}
	}

	maps.Copy(node.Constraints, e.Constraints)

	return node
}

// TranslateTree replaces every encoded constraint message in nodes, children
// first, with its translation. The nodes are rewritten in place and returned.
// The per node arguments are the node property plus the decoded message
// arguments, they replace opts.Args.
//
// Callers must own nodes exclusively, a failing backend leaves the tree partially translated.
func TranslateTree(ctx context.Context, nodes []*ErrorNode, t Translator, opts TranslateOptions) ([]*ErrorNode, error) {
	for _, node := range nodes {
		if node == nil {
			continue
		}

		if len(node.Children) > 0 {
			if _, err := TranslateTree(ctx, node.Children, t, opts); err != nil {
				return nodes, err
			}
		} else if node.Children == nil {
			node.Children = []*ErrorNode{}
		}

		if node.Constraints == nil {
			node.Constraints = map[string]string{}
			continue
		}

		for _, name := range slices.Sorted(maps.Keys(node.Constraints)) {
			key, args, err := DecodeMessage(node.Constraints[name])
			if err != nil {
				return nodes, err
			}

			nodeArgs := make(map[string]any, len(args)+1)
			nodeArgs["property"] = node.Property
			maps.Copy(nodeArgs, args)

			callOpts := opts
			callOpts.Args = nodeArgs

			msg, err := t.Translate(ctx, key, callOpts)
			if err != nil {
				return nodes, err
			}
			node.Constraints[name] = msg
		}
	}

	return nodes, nil
}

// ValidationException carries a validation report to the transport layer.
type ValidationException struct {
	Details []*ErrorNode
}

// Error implements the error interface.
func (e *ValidationException) Error() string {
	var properties []string
	for _, d := range e.Details {
		if d != nil {
			properties = append(properties, d.Property)
		}
	}
	if len(properties) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(properties, ", "))
}

// Is allows checking for ErrValidation.
func (e *ValidationException) Is(target error) bool {
	return target == ErrValidation
}

// Translate rewrites the exception details in the language of lc.
func (e *ValidationException) Translate(ctx context.Context, lc *Context) error {
	_, err := TranslateTree(ctx, e.Details, lc.Backend(), TranslateOptions{Language: lc.Language()})
	return err
}

// ToValidationException wraps nodes into a reportable error, an empty input yields empty details.
func ToValidationException(nodes []*ErrorNode) *ValidationException {
	if nodes == nil {
		nodes = []*ErrorNode{}
	}
	return &ValidationException{Details: nodes}
}

// ValidationErrorFactory converts raw validator output into a ValidationException.
func ValidationErrorFactory(errs []*ValidationError) *ValidationException {
	nodes := make([]*ErrorNode, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			nodes = append(nodes, ErrorNodeFromValidationError(e))
		}
	}
	return ToValidationException(nodes)
}
