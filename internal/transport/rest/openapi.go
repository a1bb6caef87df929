package rest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/expense-tracker/api"
	"github.com/getkin/kin-openapi/openapi3"
)

// LoadDocument parses and validates the embedded OpenAPI document.
func LoadDocument(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// VerifyRoutes checks that every route is documented and that the document
// agrees on whether it needs a bearer token.
func VerifyRoutes(doc *openapi3.T, routes []Route) error {
	var problems []string
	for _, route := range routes {
		item := doc.Paths.Find(route.Pattern)
		if item == nil {
			problems = append(problems, fmt.Sprintf("%s %s: path not documented", route.Method, route.Pattern))
			continue
		}
		op := item.GetOperation(route.Method)
		if op == nil {
			problems = append(problems, fmt.Sprintf("%s %s: operation not documented", route.Method, route.Pattern))
			continue
		}
		if documentedPublic := !requiresAuth(doc, op); documentedPublic != route.Public {
			problems = append(problems, fmt.Sprintf("%s %s: public=%t in router, public=%t in document",
				route.Method, route.Pattern, route.Public, documentedPublic))
		}
	}

	if len(problems) > 0 {
		return errors.New("route table does not match openapi document: " + strings.Join(problems, "; "))
	}
	return nil
}

// requiresAuth applies the operation's security, falling back to the
// document default. An empty list means no authentication.
func requiresAuth(doc *openapi3.T, op *openapi3.Operation) bool {
	security := doc.Security
	if op.Security != nil {
		security = *op.Security
	}
	return len(security) > 0
}
