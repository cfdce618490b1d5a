package wrimport

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultNamespace seeds the deterministic ids when no namespace is given.
// Changing it changes every generated id.
var DefaultNamespace = uuid.MustParse("6f1c3a52-8d0e-4b7e-9a41-2f5d7c9e0b13")

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

func canon(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(s)), " "))
}

func scoped(ns uuid.UUID, kind, state, key string) string {
	return v5(ns, kind+":"+strings.ToUpper(state)+":"+canon(key)).String()
}

func AllocationID(ns uuid.UUID, state, nativeID string) string {
	return scoped(ns, "allocation", state, nativeID)
}

func SiteID(ns uuid.UUID, state, nativeID string) string {
	return scoped(ns, "site", state, nativeID)
}

func WaterSourceID(ns uuid.UUID, state, nativeID string) string {
	return scoped(ns, "source", state, nativeID)
}

func OrganizationID(ns uuid.UUID, state, name string) string {
	return scoped(ns, "organization", state, name)
}

func VariableID(ns uuid.UUID, state, specificCV string) string {
	return scoped(ns, "variable", state, specificCV)
}

func MethodID(ns uuid.UUID, state, name string) string {
	return scoped(ns, "method", state, name)
}
