// Package metadata resolves the effective value of each descriptive
// field from three layered sources: agent matches, embedded file tags,
// and manual custom values, with per-field locking.
package metadata

import (
	"github.com/audiofolio/folio-server/internal/domain"
)

// FieldState is the editable state of one field. Source selects which
// layer supplies the value; Locked freezes non-custom sources against
// live refreshes; CustomValue only applies while Source is custom.
type FieldState struct {
	Source      domain.MetadataSource
	Locked      bool
	CustomValue string
}

// Resolution holds everything needed to answer "what is the effective
// value of field X" for one audiobook.
type Resolution struct {
	agent     map[domain.MetadataField]string
	file      map[domain.MetadataField]string
	snapshots map[domain.MetadataField]string
	states    map[domain.MetadataField]FieldState
}

// NewResolution builds a resolution from the live layers and the
// persisted overrides. Overrides carrying a value are custom fields;
// overrides that are locked without a value present the snapshot taken
// when the lock was saved.
func NewResolution(
	agent *domain.AgentMetadata,
	embedded *domain.EmbeddedMetadata,
	overrides map[domain.MetadataField]domain.FieldOverride,
	snapshots map[domain.MetadataField]string,
) *Resolution {
	r := &Resolution{
		agent:     map[domain.MetadataField]string{},
		file:      map[domain.MetadataField]string{},
		snapshots: snapshots,
		states:    make(map[domain.MetadataField]FieldState, len(domain.MetadataFields())),
	}
	if agent != nil {
		r.agent = agent.Fields()
	}
	if embedded != nil {
		r.file = embedded.Fields()
	}
	if r.snapshots == nil {
		r.snapshots = map[domain.MetadataField]string{}
	}

	for _, field := range domain.MetadataFields() {
		state := FieldState{Source: domain.SourceAgent}
		if ov, ok := overrides[field]; ok {
			if ov.Value != nil {
				state.Source = domain.SourceCustom
				state.CustomValue = *ov.Value
				state.Locked = true
			} else {
				state.Locked = ov.Locked
			}
		}
		r.states[field] = state
	}

	return r
}

// State returns the current state of a field.
func (r *Resolution) State(field domain.MetadataField) FieldState {
	return r.states[field]
}

// States returns a copy of all field states.
func (r *Resolution) States() map[domain.MetadataField]FieldState {
	out := make(map[domain.MetadataField]FieldState, len(r.states))
	for field, state := range r.states {
		out[field] = state
	}
	return out
}

// EffectiveValue computes the value a field currently presents.
// Custom fields present their custom value. Locked non-custom fields
// present the snapshot frozen when the lock was saved. Everything else
// tracks the live source.
func (r *Resolution) EffectiveValue(field domain.MetadataField) string {
	state := r.states[field]

	if state.Source == domain.SourceCustom {
		return state.CustomValue
	}
	if state.Locked {
		// A lock freezes at save time. A lock toggled in this session
		// has no snapshot yet and still shows the live value.
		if frozen, ok := r.snapshots[field]; ok {
			return frozen
		}
	}
	return r.liveValue(field, state.Source)
}

// EffectiveValues computes the effective value of every field.
func (r *Resolution) EffectiveValues() map[domain.MetadataField]string {
	out := make(map[domain.MetadataField]string, len(r.states))
	for field := range r.states {
		out[field] = r.EffectiveValue(field)
	}
	return out
}

func (r *Resolution) liveValue(field domain.MetadataField, source domain.MetadataSource) string {
	switch source {
	case domain.SourceFile:
		return r.file[field]
	default:
		return r.agent[field]
	}
}

// SetSource switches a field to another source. Switching to custom
// prefills the custom value with the field's current effective value
// so the edit starts from what the user was looking at.
func (r *Resolution) SetSource(field domain.MetadataField, source domain.MetadataSource) {
	state := r.states[field]
	if state.Source == source {
		return
	}
	if source == domain.SourceCustom {
		state.CustomValue = r.EffectiveValue(field)
	}
	state.Source = source
	r.states[field] = state
}

// SetCustomValue edits a field's custom value. The field is switched
// to custom first if it is not already.
func (r *Resolution) SetCustomValue(field domain.MetadataField, value string) {
	r.SetSource(field, domain.SourceCustom)
	state := r.states[field]
	state.CustomValue = value
	r.states[field] = state
}

// SetLocked toggles a field's lock.
func (r *Resolution) SetLocked(field domain.MetadataField, locked bool) {
	state := r.states[field]
	state.Locked = locked
	r.states[field] = state
}

// SetAllToAgent switches every field to the agent source.
func (r *Resolution) SetAllToAgent() {
	for _, field := range domain.MetadataFields() {
		r.SetSource(field, domain.SourceAgent)
	}
}

// SetAllToFile switches every field to the embedded-tag source.
func (r *Resolution) SetAllToFile() {
	for _, field := range domain.MetadataFields() {
		r.SetSource(field, domain.SourceFile)
	}
}

// LockAll locks every field.
func (r *Resolution) LockAll() {
	for _, field := range domain.MetadataFields() {
		r.SetLocked(field, true)
	}
}

// UnlockAll unlocks every field.
func (r *Resolution) UnlockAll() {
	for _, field := range domain.MetadataFields() {
		r.SetLocked(field, false)
	}
}

// ClearAllCustom reverts every custom field to the agent source with an
// emptied custom value. Non-custom fields are untouched.
func (r *Resolution) ClearAllCustom() {
	for _, field := range domain.MetadataFields() {
		state := r.states[field]
		if state.Source != domain.SourceCustom {
			continue
		}
		state.Source = domain.SourceAgent
		state.CustomValue = ""
		r.states[field] = state
	}
}

// SavePayload converts the current states into the override records to
// persist. Custom fields persist their value and are implicitly locked.
// Locked non-custom fields persist a valueless locked override; the
// store is responsible for snapshotting the live source value at that
// moment. Unlocked non-custom fields persist nothing and keep tracking
// the live source.
func (r *Resolution) SavePayload() map[domain.MetadataField]domain.FieldOverride {
	out := make(map[domain.MetadataField]domain.FieldOverride)
	for field, state := range r.states {
		switch {
		case state.Source == domain.SourceCustom:
			value := state.CustomValue
			out[field] = domain.FieldOverride{Value: &value, Locked: true}
		case state.Locked:
			out[field] = domain.FieldOverride{Locked: true}
		}
	}
	return out
}

// SnapshotValues returns the value to freeze for every locked
// non-custom field. Fields frozen by an earlier save keep their
// existing snapshot; fields locked in this session freeze the current
// live value. The store persists these alongside the valueless locked
// overrides so the presented value survives agent refreshes.
func (r *Resolution) SnapshotValues() map[domain.MetadataField]string {
	out := make(map[domain.MetadataField]string)
	for field, state := range r.states {
		if state.Source == domain.SourceCustom || !state.Locked {
			continue
		}
		if frozen, ok := r.snapshots[field]; ok {
			out[field] = frozen
			continue
		}
		out[field] = r.liveValue(field, state.Source)
	}
	return out
}
