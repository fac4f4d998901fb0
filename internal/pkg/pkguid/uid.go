package pkguid

// StringID yields opaque, globally unique string ids.
type StringID interface {
	Generate() string
}

// NumberID yields unique, roughly time-ordered positive ids.
type NumberID interface {
	Generate() int64
}
