package metadata

// Context is handed to every convention handler. A convention may stop
// the remaining conventions of the current event, optionally replacing
// the result object propagated back to the caller of the mutating
// builder operation.
type Context[T any] struct {
	result  T
	stopped bool
}

// StopProcessing aborts the remaining conventions for this event,
// keeping the current result.
func (c *Context[T]) StopProcessing() {
	c.stopped = true
}

// StopProcessingWith aborts the remaining conventions for this event and
// replaces the result propagated to the original caller. Used when a
// convention replaces the object being built, such as splitting one
// relationship into two.
func (c *Context[T]) StopProcessingWith(result T) {
	c.stopped = true
	c.result = result
}

// Result returns the current result object.
func (c *Context[T]) Result() T { return c.result }

// Dispatcher routes structural-change events to the conventions
// subscribed to them, in registration order. While a deferred-processing
// batch is open, raised events are queued instead of dispatched and
// flushed in FIFO order when the outermost batch closes.
type Dispatcher struct {
	set   *ConventionSet
	queue []queuedEvent
	depth int
}

func newDispatcher(set *ConventionSet) *Dispatcher {
	return &Dispatcher{set: set}
}

// Set returns the convention set the dispatcher routes to.
func (d *Dispatcher) Set() *ConventionSet { return d.set }

type queuedEvent interface {
	flush(d *Dispatcher) error
}

// Batch is a deferred-processing scope. Close flushes the queued events
// when the outermost batch closes; it is idempotent, so it can both be
// deferred for guaranteed release and called explicitly to observe the
// flush error.
type Batch struct {
	d      *Dispatcher
	closed bool
	err    error
}

// Batch opens a deferred-processing scope. Batches nest; only the
// outermost flush dispatches the queue.
func (d *Dispatcher) Batch() *Batch {
	d.depth++
	if d.depth == 1 {
		d.queue = make([]queuedEvent, 0, 8)
	}
	return &Batch{d: d}
}

// Close ends the scope. On the outermost batch it flushes the queue in
// the order the events were raised; events raised during the flush
// itself dispatch immediately. Events whose subject was removed from the
// model before the flush are skipped. A second Close returns the first
// flush error again without re-dispatching.
func (b *Batch) Close() error {
	if b.closed {
		return b.err
	}
	b.closed = true
	d := b.d
	d.depth--
	if d.depth > 0 {
		return nil
	}
	queue := d.queue
	d.queue = nil
	for _, ev := range queue {
		if err := ev.flush(d); err != nil {
			b.err = err
			return err
		}
	}
	return nil
}

func (d *Dispatcher) deferring() bool { return d.queue != nil }

// =============================================================================
// Event raising
// =============================================================================

func (d *Dispatcher) entityTypeAdded(et *EntityType) (*EntityType, error) {
	if d.deferring() {
		d.queue = append(d.queue, &entityTypeAddedEvent{et})
		return et, nil
	}
	ctx := &Context[*EntityType]{result: et}
	for _, c := range d.set.entityTypeAdded {
		if err := c.ProcessEntityTypeAdded(et, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) entityTypeRemoved(m *Model, et *EntityType) (*EntityType, error) {
	if d.deferring() {
		d.queue = append(d.queue, &entityTypeRemovedEvent{m, et})
		return et, nil
	}
	ctx := &Context[*EntityType]{result: et}
	for _, c := range d.set.entityTypeRemoved {
		if err := c.ProcessEntityTypeRemoved(m, et, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) entityTypeMemberIgnored(et *EntityType, name string) (string, error) {
	if d.deferring() {
		d.queue = append(d.queue, &memberIgnoredEvent{et, name})
		return name, nil
	}
	ctx := &Context[string]{result: name}
	for _, c := range d.set.entityTypeMemberIgnored {
		if err := c.ProcessEntityTypeMemberIgnored(et, name, ctx); err != nil {
			return "", err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) entityTypeBaseTypeChanged(et, newBase, oldBase *EntityType) (*EntityType, error) {
	if d.deferring() {
		d.queue = append(d.queue, &baseTypeChangedEvent{et, newBase, oldBase})
		return et, nil
	}
	ctx := &Context[*EntityType]{result: et}
	for _, c := range d.set.entityTypeBaseTypeChanged {
		if err := c.ProcessEntityTypeBaseTypeChanged(et, newBase, oldBase, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) entityTypeAnnotationChanged(et *EntityType, name string, ann, old *Annotation) (*Annotation, error) {
	if d.deferring() {
		d.queue = append(d.queue, &annotationChangedEvent{et, name, ann, old})
		return ann, nil
	}
	ctx := &Context[*Annotation]{result: ann}
	for _, c := range d.set.entityTypeAnnotationChanged {
		if err := c.ProcessEntityTypeAnnotationChanged(et, name, ann, old, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) keylessChanged(et *EntityType) (*EntityType, error) {
	if d.deferring() {
		d.queue = append(d.queue, &keylessChangedEvent{et})
		return et, nil
	}
	ctx := &Context[*EntityType]{result: et}
	for _, c := range d.set.keylessChanged {
		if err := c.ProcessKeylessChanged(et, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) propertyAdded(p *Property) (*Property, error) {
	if d.deferring() {
		d.queue = append(d.queue, &propertyAddedEvent{p})
		return p, nil
	}
	ctx := &Context[*Property]{result: p}
	for _, c := range d.set.propertyAdded {
		if err := c.ProcessPropertyAdded(p, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) primaryKeyChanged(et *EntityType, newKey, oldKey *Key) (*Key, error) {
	if d.deferring() {
		d.queue = append(d.queue, &primaryKeyChangedEvent{et, newKey, oldKey})
		return newKey, nil
	}
	ctx := &Context[*Key]{result: newKey}
	for _, c := range d.set.primaryKeyChanged {
		if err := c.ProcessPrimaryKeyChanged(et, newKey, oldKey, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) foreignKeyAdded(fk *ForeignKey) (*ForeignKey, error) {
	if d.deferring() {
		d.queue = append(d.queue, &foreignKeyAddedEvent{fk})
		return fk, nil
	}
	ctx := &Context[*ForeignKey]{result: fk}
	for _, c := range d.set.foreignKeyAdded {
		if err := c.ProcessForeignKeyAdded(fk, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) foreignKeyRemoved(et *EntityType, fk *ForeignKey) (*ForeignKey, error) {
	if d.deferring() {
		d.queue = append(d.queue, &foreignKeyRemovedEvent{et, fk})
		return fk, nil
	}
	ctx := &Context[*ForeignKey]{result: fk}
	for _, c := range d.set.foreignKeyRemoved {
		if err := c.ProcessForeignKeyRemoved(et, fk, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) foreignKeyPropertiesChanged(fk *ForeignKey, oldProps []*Property, oldKey *Key) (*ForeignKey, error) {
	if d.deferring() {
		d.queue = append(d.queue, &foreignKeyPropertiesChangedEvent{fk, oldProps, oldKey})
		return fk, nil
	}
	ctx := &Context[*ForeignKey]{result: fk}
	for _, c := range d.set.foreignKeyPropertiesChanged {
		if err := c.ProcessForeignKeyPropertiesChanged(fk, oldProps, oldKey, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) foreignKeyOwnershipChanged(fk *ForeignKey) (*ForeignKey, error) {
	if d.deferring() {
		d.queue = append(d.queue, &foreignKeyOwnershipChangedEvent{fk})
		return fk, nil
	}
	ctx := &Context[*ForeignKey]{result: fk}
	for _, c := range d.set.foreignKeyOwnershipChanged {
		if err := c.ProcessForeignKeyOwnershipChanged(fk, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) navigationAdded(nav *Navigation) (*Navigation, error) {
	if d.deferring() {
		d.queue = append(d.queue, &navigationAddedEvent{nav})
		return nav, nil
	}
	ctx := &Context[*Navigation]{result: nav}
	for _, c := range d.set.navigationAdded {
		if err := c.ProcessNavigationAdded(nav, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) navigationRemoved(et *EntityType, name string) (string, error) {
	if d.deferring() {
		d.queue = append(d.queue, &navigationRemovedEvent{et, name})
		return name, nil
	}
	ctx := &Context[string]{result: name}
	for _, c := range d.set.navigationRemoved {
		if err := c.ProcessNavigationRemoved(et, name, ctx); err != nil {
			return "", err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

// modelFinalizing and modelFinalized always dispatch immediately; they
// are raised by Finalize, never from within a convention's batch.
func (d *Dispatcher) modelFinalizing(m *Model) (*Model, error) {
	ctx := &Context[*Model]{result: m}
	for _, c := range d.set.modelFinalizing {
		if err := c.ProcessModelFinalizing(m, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

func (d *Dispatcher) modelFinalized(m *Model) (*Model, error) {
	ctx := &Context[*Model]{result: m}
	for _, c := range d.set.modelFinalized {
		if err := c.ProcessModelFinalized(m, ctx); err != nil {
			return nil, err
		}
		if ctx.stopped {
			break
		}
	}
	return ctx.result, nil
}

// =============================================================================
// Queued events
// =============================================================================

type entityTypeAddedEvent struct{ et *EntityType }

func (e *entityTypeAddedEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.entityTypeAdded(e.et)
	return err
}

type entityTypeRemovedEvent struct {
	m  *Model
	et *EntityType
}

func (e *entityTypeRemovedEvent) flush(d *Dispatcher) error {
	_, err := d.entityTypeRemoved(e.m, e.et)
	return err
}

type memberIgnoredEvent struct {
	et   *EntityType
	name string
}

func (e *memberIgnoredEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.entityTypeMemberIgnored(e.et, e.name)
	return err
}

type baseTypeChangedEvent struct {
	et, newBase, oldBase *EntityType
}

func (e *baseTypeChangedEvent) flush(d *Dispatcher) error {
	if e.et.removed || e.et.base != e.newBase {
		return nil
	}
	_, err := d.entityTypeBaseTypeChanged(e.et, e.newBase, e.oldBase)
	return err
}

type annotationChangedEvent struct {
	et       *EntityType
	name     string
	ann, old *Annotation
}

func (e *annotationChangedEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.entityTypeAnnotationChanged(e.et, e.name, e.ann, e.old)
	return err
}

type keylessChangedEvent struct{ et *EntityType }

func (e *keylessChangedEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.keylessChanged(e.et)
	return err
}

type propertyAddedEvent struct{ p *Property }

func (e *propertyAddedEvent) flush(d *Dispatcher) error {
	if !e.p.InModel() {
		return nil
	}
	_, err := d.propertyAdded(e.p)
	return err
}

type primaryKeyChangedEvent struct {
	et             *EntityType
	newKey, oldKey *Key
}

func (e *primaryKeyChangedEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.primaryKeyChanged(e.et, e.newKey, e.oldKey)
	return err
}

type foreignKeyAddedEvent struct{ fk *ForeignKey }

func (e *foreignKeyAddedEvent) flush(d *Dispatcher) error {
	if !e.fk.InModel() {
		return nil
	}
	_, err := d.foreignKeyAdded(e.fk)
	return err
}

type foreignKeyRemovedEvent struct {
	et *EntityType
	fk *ForeignKey
}

func (e *foreignKeyRemovedEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.foreignKeyRemoved(e.et, e.fk)
	return err
}

type foreignKeyPropertiesChangedEvent struct {
	fk       *ForeignKey
	oldProps []*Property
	oldKey   *Key
}

func (e *foreignKeyPropertiesChangedEvent) flush(d *Dispatcher) error {
	if !e.fk.InModel() {
		return nil
	}
	_, err := d.foreignKeyPropertiesChanged(e.fk, e.oldProps, e.oldKey)
	return err
}

type foreignKeyOwnershipChangedEvent struct{ fk *ForeignKey }

func (e *foreignKeyOwnershipChangedEvent) flush(d *Dispatcher) error {
	if !e.fk.InModel() {
		return nil
	}
	_, err := d.foreignKeyOwnershipChanged(e.fk)
	return err
}

type navigationAddedEvent struct{ nav *Navigation }

func (e *navigationAddedEvent) flush(d *Dispatcher) error {
	if !e.nav.InModel() {
		return nil
	}
	_, err := d.navigationAdded(e.nav)
	return err
}

type navigationRemovedEvent struct {
	et   *EntityType
	name string
}

func (e *navigationRemovedEvent) flush(d *Dispatcher) error {
	if e.et.removed {
		return nil
	}
	_, err := d.navigationRemoved(e.et, e.name)
	return err
}
