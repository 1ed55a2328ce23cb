package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carebright/carelog/internal/services/profilestats"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// Profile answers with a point-in-time snapshot of the live profile view.
// Both document subscriptions deliver their initial snapshot synchronously
// during Start, so a short-lived watcher is enough here.
func (handler *Handler) Profile(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	watcher := profilestats.NewWatcher(handler.documents, handler.auth)
	if err := watcher.Start(c.Context(), session); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	}
	defer watcher.Close()

	return c.JSON(watcher.Snapshot())
}

// ProfileStream keeps a watcher alive for the connection's lifetime and
// pushes a snapshot as a server-sent event after every change. The watcher
// is released when the client disconnects or the user signs out.
func (handler *Handler) ProfileStream(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	watcher := profilestats.NewWatcher(handler.documents, handler.auth)
	if err := watcher.Start(context.Background(), session); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(writer *bufio.Writer) {
		defer watcher.Close()

		if err := writeSnapshotEvent(writer, watcher.Snapshot()); err != nil {
			return
		}

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case <-watcher.Updates():
				if err := writeSnapshotEvent(writer, watcher.Snapshot()); err != nil {
					return
				}
			case <-keepalive.C:
				if _, err := fmt.Fprint(writer, ": keepalive\n\n"); err != nil {
					return
				}
				if err := writer.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeSnapshotEvent(writer *bufio.Writer, snapshot profilestats.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "event: profile\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return writer.Flush()
}
