// Package websocket pushes live match updates to spectators.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Registration, removal and fan-out all happen on the hub's own
// goroutine, so no locks guard the client map. Each connection gets a read
// pump, which only keeps the connection alive, and a write pump.
//
// Message Protocol:
//
// Watchers subscribe with ?match=<id> and never send commands. Each accepted
// move produces one JSON message:
//
//	{"match_id": "...", "event": "move", "data": {...move result...}}
//
// A move that ends the match is sent with event "match_finished".
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("match"))
//	})
//
//	hub.Broadcast(matchID, websocket.EventMove, result)
//
// Slow clients whose buffer fills up are dropped rather than blocking the
// hub. Cancelling the Run context closes every connection.
package websocket
