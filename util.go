package sdk

// IntPtr is a convenience helper for optional integer fields.
func IntPtr(v int) *int { return &v }

// BoolPtr is a convenience helper for optional boolean fields.
func BoolPtr(b bool) *bool { return &b }
