// Package schema provides the operating system wrappers shared by all other
// packages. The concrete [OS] and [Unix] types satisfy the small provider
// interfaces that each package declares for itself, which keeps the packages
// testable with fakes while the real implementations stay in one place.
package schema
