package scope

// Document describes a candidate knowledge-base item presented to the
// retrieval pipeline. The resolution engine never loads document content;
// it only inspects this descriptor when deciding admission.
type Document struct {
	// ID identifies the document in the caller's knowledge base.
	ID string

	// Path is the document's logical path (e.g. "support/faq/billing.md").
	Path string

	// Category is the document's single category, if any.
	Category string

	// Tags are the document's tags.
	Tags []string

	// Metadata carries arbitrary key/value metadata (e.g. dept, locale).
	Metadata map[string]string
}

// HasTag reports whether the document carries the given tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
