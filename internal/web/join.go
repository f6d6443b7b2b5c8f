package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	swapnet "github.com/peterkuimelis/swapduel/internal/net"
)

// handleJoin proxies a browser into a hosted TCP match. The first message
// names the host address; everything after is relayed line by line.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Printf("websocket accept: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_, connectData, err := wsConn.Read(ctx)
	if err != nil {
		s.logger.Printf("websocket read connect: %v", err)
		return
	}

	var connectMsg struct {
		Type  string          `json:"type"`
		Addr  string          `json:"addr"`
		Name  string          `json:"name"`
		Owned []catalog.Asset `json:"owned"`
	}
	if err := json.Unmarshal(connectData, &connectMsg); err != nil || connectMsg.Type != "connect" {
		wsConn.Close(websocket.StatusPolicyViolation, "expected connect message")
		return
	}

	var d net.Dialer
	tcpConn, err := d.DialContext(ctx, "tcp", connectMsg.Addr)
	if err != nil {
		errMsg, _ := json.Marshal(swapnet.ServerMessage{
			Type:   "error",
			Result: fmt.Sprintf("Could not connect to game server at %s: %v", connectMsg.Addr, err),
		})
		wsConn.Write(ctx, websocket.MessageText, errMsg)
		wsConn.Close(websocket.StatusNormalClosure, "connection failed")
		return
	}
	defer tcpConn.Close()

	join := swapnet.ClientMessage{Type: "join", Name: connectMsg.Name, Owned: connectMsg.Owned}
	if err := json.NewEncoder(tcpConn).Encode(join); err != nil {
		s.logger.Printf("tcp write join: %v", err)
		return
	}

	done := make(chan struct{})

	// TCP → WebSocket
	go func() {
		defer close(done)
		dec := json.NewDecoder(tcpConn)
		for {
			var msg json.RawMessage
			if err := dec.Decode(&msg); err != nil {
				if err != io.EOF {
					s.logger.Printf("tcp read: %v", err)
				}
				return
			}
			if err := wsConn.Write(ctx, websocket.MessageText, msg); err != nil {
				s.logger.Printf("websocket write: %v", err)
				return
			}
		}
	}()

	// WebSocket → TCP
	go func() {
		defer cancel()
		for {
			_, data, err := wsConn.Read(ctx)
			if err != nil {
				tcpConn.Close()
				return
			}
			data = append(data, '\n')
			if _, err := tcpConn.Write(data); err != nil {
				s.logger.Printf("tcp write: %v", err)
				return
			}
		}
	}()

	<-done
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}
