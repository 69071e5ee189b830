// Package reactive provides the signals that hold component state.
//
// A Signal is a value container. Reading it with Get while a Listener is
// tracking (a component render) subscribes that listener; writing it with Set
// marks every subscriber dirty so the runtime re-renders it.
//
//	liked := reactive.NewSignal(false)
//
//	reactive.WithListener(instance, func() {
//	    tree = component.Render() // reads liked.Get()
//	})
//
//	liked.Set(true) // instance.MarkDirty() is called
//
// Tracking state is kept per goroutine. Each session renders and handles
// events on its own loop goroutine, so sessions never observe each other's
// listeners.
package reactive
