// Package authz builds the casbin enforcer guarding operator endpoints.
//
// Policies are static and come from configuration as "sub, obj, act"
// triples; grouping rules are "g, user, role" triples. Either obj or act
// may be "*".
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

var ErrInvalidRule = errors.New("authz: rule must have three comma separated fields")

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer returns an in-memory enforcer loaded with rules.
func NewEnforcer(rules []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: parse model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: new enforcer: %w", err)
	}

	for _, raw := range rules {
		fields := split(raw)

		switch {
		case len(fields) == 3 && fields[0] == "g":
			_, err = e.AddGroupingPolicy(fields[1], fields[2])
		case len(fields) == 3:
			_, err = e.AddPolicy(fields[0], fields[1], fields[2])
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidRule, raw)
		}
		if err != nil {
			return nil, fmt.Errorf("authz: add rule %q: %w", raw, err)
		}
	}

	return e, nil
}

func split(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
