package domain

// MetadataField names the descriptive fields subject to override resolution.
type MetadataField string

// Descriptive fields resolved per audiobook.
const (
	FieldTitle        MetadataField = "title"
	FieldSubtitle     MetadataField = "subtitle"
	FieldAuthor       MetadataField = "author"
	FieldNarrator     MetadataField = "narrator"
	FieldSeries       MetadataField = "series"
	FieldSeriesNumber MetadataField = "series_number"
	FieldYear         MetadataField = "year"
	FieldDescription  MetadataField = "description"
)

// MetadataFields lists every resolvable field in presentation order.
func MetadataFields() []MetadataField {
	return []MetadataField{
		FieldTitle,
		FieldSubtitle,
		FieldAuthor,
		FieldNarrator,
		FieldSeries,
		FieldSeriesNumber,
		FieldYear,
		FieldDescription,
	}
}

// Valid reports whether f is a known resolvable field.
func (f MetadataField) Valid() bool {
	switch f {
	case FieldTitle, FieldSubtitle, FieldAuthor, FieldNarrator,
		FieldSeries, FieldSeriesNumber, FieldYear, FieldDescription:
		return true
	}
	return false
}

// MetadataSource identifies which layer a field's effective value comes from.
type MetadataSource string

// The three mutually exclusive sources.
const (
	SourceAgent  MetadataSource = "agent"  // matched by an external metadata provider
	SourceFile   MetadataSource = "file"   // embedded tags read from the audio files
	SourceCustom MetadataSource = "custom" // manually edited value
)

// Valid reports whether s is a known source.
func (s MetadataSource) Valid() bool {
	return s == SourceAgent || s == SourceFile || s == SourceCustom
}

// FieldOverride is the persisted per-field override record.
//
// A row with Value set is a custom (manual) value. A row with Locked true and
// no Value freezes the source value as it was at save time; it does not mean
// "use an empty string".
type FieldOverride struct {
	Value  *string `json:"value,omitempty"`
	Locked bool    `json:"locked,omitempty"`
}

// AgentMetadata is the result shape an external metadata provider match
// produces. How the match happens is outside this core; only the stored row
// matters here.
type AgentMetadata struct {
	AudiobookID  string `json:"audiobook_id"`
	Title        string `json:"title,omitempty"`
	Subtitle     string `json:"subtitle,omitempty"`
	Author       string `json:"author,omitempty"`
	Narrator     string `json:"narrator,omitempty"`
	Series       string `json:"series,omitempty"`
	SeriesNumber string `json:"series_number,omitempty"`
	Year         string `json:"year,omitempty"`
	Description  string `json:"description,omitempty"`
	CoverURL     string `json:"cover_url,omitempty"`
	Provider     string `json:"provider,omitempty"`
	ProviderID   string `json:"provider_id,omitempty"`
}

// Fields returns the agent layer as a field-value map.
func (m *AgentMetadata) Fields() map[MetadataField]string {
	if m == nil {
		return map[MetadataField]string{}
	}
	return map[MetadataField]string{
		FieldTitle:        m.Title,
		FieldSubtitle:     m.Subtitle,
		FieldAuthor:       m.Author,
		FieldNarrator:     m.Narrator,
		FieldSeries:       m.Series,
		FieldSeriesNumber: m.SeriesNumber,
		FieldYear:         m.Year,
		FieldDescription:  m.Description,
	}
}

// EmbeddedMetadata is the "file" layer: tags read from the audio files
// themselves during scanning. Empty until a probe succeeds.
type EmbeddedMetadata struct {
	AudiobookID  string `json:"audiobook_id"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Series       string `json:"series,omitempty"`
	SeriesNumber string `json:"series_number,omitempty"`
}

// Fields returns the embedded layer as a field-value map. Fields the tag
// formats cannot carry are present but empty.
func (m *EmbeddedMetadata) Fields() map[MetadataField]string {
	fields := map[MetadataField]string{}
	for _, f := range MetadataFields() {
		fields[f] = ""
	}
	if m == nil {
		return fields
	}
	fields[FieldTitle] = m.Title
	fields[FieldAuthor] = m.Author
	fields[FieldSeries] = m.Series
	fields[FieldSeriesNumber] = m.SeriesNumber
	return fields
}
