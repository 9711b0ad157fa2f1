package url

import "testing"

func TestParseLocal(t *testing.T) {
	u, err := Parse("/some/path")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := &URL{Protocol: Protocol_Local, Path: "/some/path"}
	if *u != *want {
		t.Errorf("got %+v, want %+v", u, want)
	}
}

func TestParseLocalRejectsEmpty(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Error("expected error parsing empty endpoint")
	}
}

func TestParseServer(t *testing.T) {
	u, err := Parse("server://example.com:9715")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := &URL{Protocol: Protocol_Server, Hostname: "example.com", Port: 9715}
	if *u != *want {
		t.Errorf("got %+v, want %+v", u, want)
	}
}

func TestParseServerRejectsMissingPort(t *testing.T) {
	if _, err := Parse("server://example.com"); err == nil {
		t.Error("expected error parsing server endpoint with no port")
	}
}

func TestParseServerRejectsBadPort(t *testing.T) {
	if _, err := Parse("server://example.com:notaport"); err == nil {
		t.Error("expected error parsing server endpoint with non-numeric port")
	}
}

func TestParseRemoteWithUser(t *testing.T) {
	u, err := Parse("remote://alice@example.com:/var/data")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := &URL{Protocol: Protocol_Remote, Username: "alice", Hostname: "example.com", Path: "/var/data"}
	if *u != *want {
		t.Errorf("got %+v, want %+v", u, want)
	}
}

func TestParseRemoteWithoutUser(t *testing.T) {
	u, err := Parse("remote://example.com:/var/data")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := &URL{Protocol: Protocol_Remote, Hostname: "example.com", Path: "/var/data"}
	if *u != *want {
		t.Errorf("got %+v, want %+v", u, want)
	}
}

func TestParseRemoteRejectsMissingPath(t *testing.T) {
	if _, err := Parse("remote://example.com"); err == nil {
		t.Error("expected error parsing remote endpoint with no path")
	}
}

func TestParseLocalPathWithColonIsNotURL(t *testing.T) {
	u, err := Parse("./weird:name")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if u.Protocol != Protocol_Local || u.Path != "./weird:name" {
		t.Errorf("got %+v, want a local path", u)
	}
}
