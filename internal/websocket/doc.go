// Package websocket implements the dashboard's live rerun channel.
//
// The page opens /ws and sends {"start":"YYYY-MM-DD","end":"YYYY-MM-DD"}
// whenever a date input changes. Each message triggers one full recompute
// and the reply is the Dashboard JSON document; requests that cannot be
// answered get {"type":"error","error":"..."}. A {"type":"heartbeat"} frame
// only refreshes the read deadline.
//
// The Hub counts open connections and closes them on shutdown.
package websocket
