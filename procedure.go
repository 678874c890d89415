package winloop

// route delivers a decoded event to the channels of its window. Events for
// windows the registry does not know are dropped.
func (c *Context) route(ev Event) {
	h := ev.Target()
	st, ok := c.registry.Get(h)
	if !ok {
		c.logger.Debug("event for unknown window", "window", h, "event", EventName(ev))
		return
	}

	switch ev := ev.(type) {
	case PaintEvent:
		st.draw.Send(struct{}{})
	case PointerMoveEvent:
		if c.pointerOwner != h {
			c.pointerOwner = h
			c.platform.TrackPointer(h)
			c.platform.ApplyCursor(h, st.Cursor)
			st.cursorEntered.Send(ev.State)
		} else {
			st.cursorMoved.Send(ev.State)
		}
	case PointerLeaveEvent:
		if c.pointerOwner == h {
			c.pointerOwner = 0
		}
		st.cursorLeft.Send(ev.State)
	case MouseInputEvent:
		st.mouseInput.Send(ev.Input)
	case MouseWheelEvent:
		st.mouseWheel.Send(ev.Wheel)
	case KeyEvent:
		st.keyInput.Send(ev.Input)
	case CharEvent:
		st.charInput.Send(ev.Char)
	case IMEStartEvent:
		c.platform.PlaceIME(h, st.IMEPosition, st.IMECompositionWindow, st.IMECandidateWindow)
		st.imeStart.Send(struct{}{})
	case IMECompositionEvent:
		st.imeUpdate.Send(ev.Update)
	case IMEEndEvent:
		st.imeEnd.Send(ev.Result)
	case MoveEvent:
		st.moved.Send(ev.Position)
	case SizeEvent:
		st.resizing.Send(ev.Size)
		if !c.resizing {
			st.resized.Send(ev.Size)
		}
	case SizeMoveEvent:
		c.resizing = ev.Active
		if !ev.Active {
			g, err := c.platform.Geometry(h)
			if err != nil {
				c.logger.Warn("query client size", "window", h, "error", err)
				return
			}
			st.resized.Send(g.ClientSize)
		}
	case DPIEvent:
		st.dpiChanged.Send(ev.DPI)
	case ActivateEvent:
		if ev.Active {
			st.activated.Send(struct{}{})
		} else {
			st.deactivated.Send(struct{}{})
		}
	case DropEvent:
		st.filesDropped.Send(ev.Files)
	case CloseEvent:
		if !st.handshake.offer(c.dispatcher) {
			c.destroy(h)
		}
	case DestroyEvent:
		st.closed.Send(struct{}{})
		if c.pointerOwner == h {
			c.pointerOwner = 0
		}
		c.registry.Remove(h)
		c.logger.Debug("window removed", "window", h, "windows", c.registry.Len())
	default:
		c.logger.Debug("unhandled event", "window", h, "event", EventName(ev))
	}
}

// destroy asks the platform to tear h down. The registry entry goes away
// when the resulting DestroyEvent is routed.
func (c *Context) destroy(h Handle) {
	if _, ok := c.registry.Get(h); !ok {
		return
	}
	if err := c.platform.Destroy(h); err != nil {
		c.logger.Warn("destroy window", "window", h, "error", err)
	}
}
