// Package event provides the synchronous event bus used by the editor core.
//
// The bus is the communication backbone between the document model and the
// undo machinery. Modules publish events instead of calling each other, so
// the undo controller can observe document changes without the model knowing
// it exists.
//
// # Event Topics
//
// Events use hierarchical topics with dot notation:
//
//	document.applied     - A batch of deltas was applied to the document
//	undo.stack.changed   - An undo or redo stack gained or lost an entry
//	undo.reverted        - An undo step completed
//	redo.reverted        - A redo step completed
//	config.changed       - Configuration was reloaded
//
// # Wildcard Patterns
//
// Subscriptions support wildcard patterns:
//
//	"document.*"   - matches "document.applied" but not "document.a.b"
//	"undo.**"      - matches "undo.reverted" and "undo.stack.changed"
//	"**"           - matches every event
//
// # Delivery Model
//
// Delivery is synchronous and single-threaded. Publish runs every matching
// handler in the publisher's goroutine, in priority order, before returning.
// Handlers may publish further events; those nested events are fully
// delivered before the outer Publish returns. This gives the undo system a
// deterministic ordering guarantee without locks in handler code.
//
// # Usage
//
//	bus := event.NewBus()
//	sub, _ := bus.SubscribeFunc("document.*", func(ctx context.Context, e any) error {
//		if payload, ok := event.PayloadOf[ApplyInfo](e); ok {
//			// react to the change
//			_ = payload
//		}
//		return nil
//	}, event.WithPriority(event.PriorityCritical))
//	defer bus.Unsubscribe(sub)
package event
