package asset

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/canterburyairpatrol/smm-asset/packages/session"
)

const assetsPath = "/assets/mine/json/"

// Fetcher issues GET requests against an SMM host. *session.Session
// implements it.
type Fetcher interface {
	Get(path string, sink io.Writer) (*session.FetchResult, error)
}

// Asset is one aircraft, vehicle or team the user may report as.
type Asset struct {
	conn Fetcher

	ID     int64
	TypeID int64
	Name   string
	Type   string

	mu          sync.Mutex
	lastCommand Command
	gotoLat     float64
	gotoLon     float64
}

// New binds an asset known by id to conn.
func New(conn Fetcher, id int64, name string) *Asset {
	return &Asset{conn: conn, ID: id, TypeID: -1, Name: name}
}

// GetAssets lists the assets the session user owns.
func GetAssets(conn Fetcher) ([]*Asset, error) {
	_, body, err := getOK(conn, assetsPath)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w", assetsPath, ErrMalformedPayload)
	}

	assets := make([]*Asset, 0)
	gjson.GetBytes(body, "assets").ForEach(func(_, value gjson.Result) bool {
		a := &Asset{conn: conn, ID: -1, TypeID: -1}
		if v := value.Get("id"); v.Exists() {
			a.ID = v.Int()
		}
		if v := value.Get("type_id"); v.Exists() {
			a.TypeID = v.Int()
		}
		a.Name = value.Get("name").String()
		a.Type = value.Get("type_name").String()
		assets = append(assets, a)
		return true
	})
	return assets, nil
}

// Find returns the asset called name, or nil.
func Find(assets []*Asset, name string) *Asset {
	for _, a := range assets {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Position is one position report.
type Position struct {
	Latitude  float64
	Longitude float64
	Altitude  uint
	Bearing   uint16
	Fix       uint8
}

// ReportPosition sends p to the server and records the command it
// answers with.
func (a *Asset) ReportPosition(p Position) (Command, error) {
	path := fmt.Sprintf("/data/assets/%d/position/add/?lat=%f&lon=%f&alt=%d&bearing=%d&fix=%d",
		a.ID, p.Latitude, p.Longitude, p.Altitude, p.Bearing, p.Fix)

	res, body, err := getOK(a.conn, path)
	if err != nil {
		return CommandNone, err
	}

	var u commandUpdate
	if res.IsJSON() {
		u = decodeCommandJSON(body)
	} else {
		u = decodeCommandText(body)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if u.changed {
		a.lastCommand = u.command
		if u.command == CommandGoto {
			a.gotoLat, a.gotoLon = u.lat, u.lon
		}
	}
	return a.lastCommand, nil
}

// LastCommand returns the command received with the last report.
func (a *Asset) LastCommand() Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastCommand
}

// LastGotoPosition returns the target of the last command when it was a
// GOTO.
func (a *Asset) LastGotoPosition() (lat, lon float64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastCommand != CommandGoto {
		return 0, 0, false
	}
	return a.gotoLat, a.gotoLon, true
}

func getOK(conn Fetcher, path string) (*session.FetchResult, []byte, error) {
	var buf bytes.Buffer
	res, err := conn.Get(path, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if !res.IsOK() {
		return res, nil, fmt.Errorf("GET %s: %w: %d", path, ErrUnexpectedStatus, res.StatusCode)
	}
	return res, buf.Bytes(), nil
}
