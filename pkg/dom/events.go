package dom

import (
	"golang.org/x/net/html"
)

// EventClick is dispatched by Click.
const EventClick = "click"

// Event travels from its target towards the document root when Bubbles is
// set, invoking the listeners registered for Type on every node on the way.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	Detail        any
	Bubbles       bool

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
// Listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// AddEventListener registers fn for events of type typ reaching node.
// Listeners on the same node run in registration order.
func (d *Document) AddEventListener(node *html.Node, typ string, fn Listener) ListenerID {
	if node == nil || typ == "" || fn == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	reg := &registration{id: ListenerID(d.nextID), node: node, typ: typ, fn: fn}
	d.listeners[node] = append(d.listeners[node], reg)
	d.byID[reg.id] = reg
	return reg.id
}

// RemoveEventListener unregisters a listener. A listener removed while an
// event is in flight is not invoked for the remainder of that dispatch.
func (d *Document) RemoveEventListener(id ListenerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	reg, ok := d.byID[id]
	if !ok {
		return false
	}
	reg.detached.Store(true)
	delete(d.byID, id)

	regs := d.listeners[reg.node]
	kept := regs[:0]
	for _, r := range regs {
		if r != reg {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(d.listeners, reg.node)
	} else {
		d.listeners[reg.node] = kept
	}
	return true
}

// ListenerCount reports how many listeners of type typ are registered on
// node. An empty typ counts every listener on the node.
func (d *Document) ListenerCount(node *html.Node, typ string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, reg := range d.listeners[node] {
		if typ == "" || reg.typ == typ {
			count++
		}
	}
	return count
}

// TotalListeners reports the number of registered listeners in the document.
func (d *Document) TotalListeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byID)
}

// Dispatch delivers ev to target and, when ev.Bubbles is set, to each of its
// ancestors. It reports whether any listener ran.
func (d *Document) Dispatch(target *html.Node, ev *Event) bool {
	if target == nil || ev == nil || ev.Type == "" {
		return false
	}
	ev.Target = target

	d.mu.Lock()
	type hop struct {
		node *html.Node
		regs []*registration
	}
	var path []hop
	for cur := target; cur != nil; cur = cur.Parent {
		var regs []*registration
		for _, reg := range d.listeners[cur] {
			if reg.typ == ev.Type {
				regs = append(regs, reg)
			}
		}
		if len(regs) > 0 {
			path = append(path, hop{node: cur, regs: regs})
		}
		if !ev.Bubbles {
			break
		}
	}
	d.mu.Unlock()

	invoked := false
	for _, h := range path {
		ev.CurrentTarget = h.node
		for _, reg := range h.regs {
			if reg.detached.Load() {
				continue
			}
			reg.fn(ev)
			invoked = true
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return invoked
}

// Click dispatches a bubbling click event on node.
func (d *Document) Click(node *html.Node) bool {
	return d.Dispatch(node, &Event{Type: EventClick, Bubbles: true})
}
