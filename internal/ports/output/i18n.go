package output

// T renders the localized message for key. data fills template placeholders
// and may be nil; unknown keys render as the key itself.
type T interface {
	T(locale, key string, data map[string]any) string
}
