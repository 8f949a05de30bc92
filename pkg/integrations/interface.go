package integrations

// PageFilter transforms a page image before it lands in an export.
type PageFilter interface {
	Process(data []byte) ([]byte, error)
}
