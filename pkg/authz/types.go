package authz

import (
	"strings"
)

const (
	userPrefix = "user:"
	rolePrefix = "role:"
	anyAction  = "*"
)

// Request asks whether Subject may perform Action on Object.
type Request struct {
	Subject string
	Object  string
	Action  string
}

func NewRequest(subject, object, action string) Request {
	return Request{Subject: subject, Object: object, Action: action}
}

// UserRequest builds the request for a user id taken from the user header.
func UserRequest(userID, object, action string) Request {
	return NewRequest(SubjectForUser(userID), object, NormalizeAction(action))
}

func (r Request) String() string {
	return r.Subject + " " + r.Action + " " + r.Object
}

// SubjectForUser returns user:<id>, or user:anonymous for a blank id.
func SubjectForUser(userID string) string {
	if id := strings.TrimSpace(userID); id != "" {
		return userPrefix + id
	}
	return userPrefix + "anonymous"
}

// SubjectForRole returns role:<slug> lowercased. Already prefixed slugs pass through.
func SubjectForRole(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	switch {
	case slug == "":
		return rolePrefix + "unnamed"
	case strings.HasPrefix(slug, rolePrefix):
		return slug
	default:
		return rolePrefix + slug
	}
}

// ObjectName joins the non-empty parts with dots, lowercased: ObjectName("members", "list") is members.list.
func ObjectName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return anyAction
	}
	return strings.Join(kept, ".")
}

// NormalizeAction lowercases action; blank means any action.
func NormalizeAction(action string) string {
	if action = strings.ToLower(strings.TrimSpace(action)); action != "" {
		return action
	}
	return anyAction
}
