package engine

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Command
		wantErr bool
	}{
		{"relay on", `{"cmd":"relay","id":1,"state":true}`, Command{Op: OpRelay, Channel: 1, On: true}, false},
		{"relay off", `{"cmd":"relay","id":4,"state":false}`, Command{Op: OpRelay, Channel: 4}, false},
		{"relay missing state", `{"cmd":"relay","id":1}`, Command{}, true},
		{"relay missing id", `{"cmd":"relay","state":true}`, Command{}, true},
		{"relay id zero", `{"cmd":"relay","id":0,"state":true}`, Command{}, true},
		{"relay id out of range", `{"cmd":"relay","id":5,"state":true}`, Command{}, true},
		{"relay fractional id", `{"cmd":"relay","id":1.5,"state":true}`, Command{}, true},
		{"setTimer", `{"cmd":"setTimer","id":2,"minutes":90}`, Command{Op: OpSetTimer, Channel: 2, Minutes: 90}, false},
		{"setTimer zero disarms", `{"cmd":"setTimer","id":2,"minutes":0}`, Command{Op: OpSetTimer, Channel: 2}, false},
		{"setTimer negative", `{"cmd":"setTimer","id":2,"minutes":-5}`, Command{}, true},
		{"setTimer missing minutes", `{"cmd":"setTimer","id":2}`, Command{}, true},
		{"setLimit", `{"cmd":"setLimit","id":3,"seconds":7200}`, Command{Op: OpSetLimit, Channel: 3, Seconds: 7200}, false},
		{"setLimit zero accepted", `{"cmd":"setLimit","id":3,"seconds":0}`, Command{Op: OpSetLimit, Channel: 3}, false},
		{"setLimit negative", `{"cmd":"setLimit","id":3,"seconds":-1}`, Command{}, true},
		{"setLimit missing seconds", `{"cmd":"setLimit","id":3}`, Command{}, true},
		{"setPrice", `{"cmd":"setPrice","price":9.75}`, Command{Op: OpSetPrice, Price: 9.75}, false},
		{"setPrice integer", `{"cmd":"setPrice","price":10}`, Command{Op: OpSetPrice, Price: 10}, false},
		{"setPrice missing price", `{"cmd":"setPrice"}`, Command{}, true},
		{"clearNotifs", `{"cmd":"clearNotifs"}`, Command{Op: OpClearNotifs}, false},
		{"unknown command", `{"cmd":"reboot"}`, Command{}, true},
		{"missing cmd", `{"id":1,"state":true}`, Command{}, true},
		{"empty object", `{}`, Command{}, true},
		{"not json", `relay 1 on`, Command{}, true},
		{"empty frame", ``, Command{}, true},
	}

	for _, tt := range tests {
		got, err := ParseCommand([]byte(tt.in))
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %+v", tt.name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestParseCommandIgnoresExtraFields(t *testing.T) {
	got, err := ParseCommand([]byte(`{"cmd":"relay","id":1,"state":true,"source":"dashboard"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Command{Op: OpRelay, Channel: 1, On: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestValidChannel(t *testing.T) {
	for id := 1; id <= NumChannels; id++ {
		if !validChannel(id) {
			t.Errorf("channel %d should be valid", id)
		}
	}
	for _, id := range []int{-1, 0, NumChannels + 1, 100} {
		if validChannel(id) {
			t.Errorf("channel %d should be invalid", id)
		}
	}
}
