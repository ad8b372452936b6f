package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/everstacklabs/apidiff/internal/diff"
	"github.com/everstacklabs/apidiff/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	s := model.NewSnapshot()

	c := model.NewClass(model.Decl{Name: "Client", Namespace: `Acme\Http`, File: "src/Client.php", DocComment: "/** HTTP client */"})
	c.Final = true
	c.Extends = `Acme\Base`
	c.Implements = []string{"Countable", "JsonSerializable"}
	c.AddMethod(&model.Method{
		Decl: c.Member("send", ""),
		Signature: model.Signature{
			Parameters: []model.Parameter{
				{Name: "request", Type: "RequestInterface"},
				{Name: "options", Type: "array", HasDefault: true},
				{Name: "out", ByRef: true},
			},
			ReturnType: "ResponseInterface",
		},
		Visibility: model.Public,
	})
	c.AddMethod(&model.Method{Decl: c.Member("create", ""), Static: true, Visibility: model.Public})
	c.AddConstant(&model.Constant{Decl: c.Member("TIMEOUT", ""), Value: int64(30)})
	c.AddConstant(&model.Constant{Decl: c.Member("RATIO", ""), Value: 0.5})
	c.AddConstant(&model.Constant{Decl: c.Member("NAME", ""), Value: "true", ValueType: "string"})
	s.AddClass(c)

	i := model.NewInterface(model.Decl{Name: "Middleware", Namespace: `Acme\Http`, File: "src/Middleware.php"})
	i.Extends = []string{"Handler"}
	i.AddMethod(&model.Method{
		Decl:       i.Member("process", "/** @internal */"),
		Signature:  model.Signature{Parameters: []model.Parameter{{Name: "args", Variadic: true}}},
		Abstract:   true,
		Visibility: model.Public,
	})
	s.AddInterface(i)

	s.AddFunction(&model.Function{
		Decl:      model.Decl{Name: "helper", File: "src/functions.php"},
		Signature: model.Signature{ReturnType: "?string"},
	})
	s.AddConstant(&model.Constant{Decl: model.Decl{Name: "VERSION", Namespace: "Acme", File: "src/functions.php"}, Value: "1.0"})
	s.AddConstant(&model.Constant{Decl: model.Decl{Name: "DEBUG", Namespace: "Acme", File: "src/functions.php"}, Value: nil})

	s.AddFile("src/Client.php", "aaa")
	s.AddFile("src/Middleware.php", "bbb")
	s.AddFile("src/functions.php", "ccc")
	return s
}

func TestRoundTripHasNoChanges(t *testing.T) {
	orig := sampleSnapshot()
	data, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if changes := diff.Compute(orig, got); len(changes) != 0 {
		for _, c := range changes {
			t.Errorf("unexpected change: %s", c.Description)
		}
	}
	if files := diff.CompareFiles(orig, got, nil); len(files) != 0 {
		t.Errorf("unexpected file changes: %v", files)
	}
	if got.Len() != orig.Len() {
		t.Errorf("Len = %d, want %d", got.Len(), orig.Len())
	}
}

func TestRoundTripKeepsOrderAndOwners(t *testing.T) {
	got, err := Decode(mustEncode(t, sampleSnapshot()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	c, ok := got.Classes.Get(`Acme\Http\Client`)
	if !ok {
		t.Fatal("class not found")
	}
	var names []string
	for p := c.Methods.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	if strings.Join(names, ",") != "send,create" {
		t.Errorf("method order = %v", names)
	}

	send, _ := c.Methods.Get("send")
	if send.FullyQualifiedName() != `Acme\Http\Client::send` {
		t.Errorf("FQN = %q", send.FullyQualifiedName())
	}
	if send.File != "src/Client.php" {
		t.Errorf("member file = %q", send.File)
	}
	if !send.Parameters[2].ByRef || !send.Parameters[1].HasDefault {
		t.Errorf("parameters = %+v", send.Parameters)
	}

	i, _ := got.Interfaces.Get(`Acme\Http\Middleware`)
	process, _ := i.Methods.Get("process")
	if !process.IsInternal() {
		t.Error("process should keep its @internal tag")
	}

	var consts []string
	for p := got.Constants.Oldest(); p != nil; p = p.Next() {
		consts = append(consts, p.Key)
	}
	if strings.Join(consts, ",") != `Acme\VERSION,Acme\DEBUG` {
		t.Errorf("constant order = %v", consts)
	}
}

func TestConstantValueTypes(t *testing.T) {
	got, err := Decode(mustEncode(t, sampleSnapshot()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c, _ := got.Classes.Get(`Acme\Http\Client`)

	tests := []struct {
		name string
		want any
	}{
		{"TIMEOUT", int64(30)},
		{"RATIO", 0.5},
		{"NAME", "true"},
	}
	for _, tt := range tests {
		k, ok := c.Constants.Get(tt.name)
		if !ok {
			t.Errorf("%s missing", tt.name)
			continue
		}
		if k.Value != tt.want {
			t.Errorf("%s = %#v, want %#v", tt.name, k.Value, tt.want)
		}
	}

	debug, _ := got.Constants.Get(`Acme\DEBUG`)
	if debug.Value != nil {
		t.Errorf("DEBUG = %#v, want nil", debug.Value)
	}
}

func TestIntegralFloatConstantRoundTrip(t *testing.T) {
	orig := model.NewSnapshot()
	c := model.NewClass(model.Decl{Name: "Math", Namespace: "Acme", File: "src/Math.php"})
	c.AddConstant(&model.Constant{Decl: c.Member("RATIO", ""), Value: 2.0})
	c.AddConstant(&model.Constant{Decl: c.Member("COUNT", ""), Value: int64(2)})
	orig.AddClass(c)
	orig.AddConstant(&model.Constant{Decl: model.Decl{Name: "SCALE", Namespace: "Acme", File: "src/Math.php"}, Value: -1.0})

	got, err := Decode(mustEncode(t, orig))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	gc, _ := got.Classes.Get(`Acme\Math`)
	if k, _ := gc.Constants.Get("RATIO"); k.Value != 2.0 {
		t.Errorf("RATIO = %#v, want float64(2)", k.Value)
	}
	if k, _ := gc.Constants.Get("COUNT"); k.Value != int64(2) {
		t.Errorf("COUNT = %#v, want int64(2)", k.Value)
	}
	if k, _ := got.Constants.Get(`Acme\SCALE`); k.Value != -1.0 {
		t.Errorf("SCALE = %#v, want float64(-1)", k.Value)
	}
	for _, ch := range diff.Compute(got, orig) {
		t.Errorf("unexpected change: %s", ch.Description)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing version", "classes: []\n"},
		{"future version", "version: 2\n"},
		{"not yaml", "version: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("err = %v, want ErrInvalidSnapshot", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "api.yaml")
	if err := Save(path, sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "version: 1\n") {
		t.Errorf("document starts with %q", strings.SplitN(string(data), "\n", 2)[0])
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 5 {
		t.Errorf("Len = %d, want 5", got.Len())
	}
	if len(got.Files) != 3 {
		t.Errorf("files = %d, want 3", len(got.Files))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func mustEncode(t *testing.T, s *model.Snapshot) []byte {
	t.Helper()
	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}
