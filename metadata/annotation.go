package metadata

import "sort"

// Annotation is a named value attached to a model element, together with
// the configuration source that set it.
type Annotation struct {
	name   string
	value  any
	source ConfigurationSource
}

// Name returns the annotation name.
func (a *Annotation) Name() string { return a.name }

// Value returns the annotation value.
func (a *Annotation) Value() any { return a.value }

// Source returns the configuration source of the annotation.
func (a *Annotation) Source() ConfigurationSource { return a.source }

// annotatable is the shared annotation store embedded by model elements.
type annotatable struct {
	annotations map[string]*Annotation
}

// set stores the annotation if source overrides the existing one.
// It returns the stored annotation, the replaced one, and whether the
// store changed.
func (a *annotatable) set(name string, value any, source ConfigurationSource) (ann, old *Annotation, ok bool) {
	old = a.annotations[name]
	if old != nil {
		if !source.Overrides(old.source) {
			return old, old, false
		}
		if old.value == value {
			old.source = old.source.Max(source)
			return old, old, false
		}
	}
	if a.annotations == nil {
		a.annotations = make(map[string]*Annotation)
	}
	ann = &Annotation{name: name, value: value, source: source}
	a.annotations[name] = ann
	return ann, old, true
}

// remove deletes the annotation if source overrides it.
func (a *annotatable) remove(name string, source ConfigurationSource) (*Annotation, bool) {
	old := a.annotations[name]
	if old == nil || !source.Overrides(old.source) {
		return old, false
	}
	delete(a.annotations, name)
	return old, true
}

func (a *annotatable) find(name string) *Annotation {
	return a.annotations[name]
}

// all returns the annotations sorted by name.
func (a *annotatable) all() []*Annotation {
	anns := make([]*Annotation, 0, len(a.annotations))
	for _, ann := range a.annotations {
		anns = append(anns, ann)
	}
	sort.Slice(anns, func(i, j int) bool { return anns[i].name < anns[j].name })
	return anns
}
