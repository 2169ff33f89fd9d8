package native

import "testing"

type greeter struct{}

func (greeter) Greet(who string) string { return "Hello, " + who }

func (greeter) Pair() (int, int) { return 1, 2 }

func (greeter) Boom() { panic("kaboom") }

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	e, ok := r.Lookup("App\\Greeter")
	if !ok || e.Name != "App\\Greeter" || e.Builtin {
		t.Errorf("entry = %+v, ok = %v", e, ok)
	}
	if _, ok := r.Lookup("App\\Missing"); ok {
		t.Error("unknown class should not resolve")
	}
}

func TestRegisterBuiltin(t *testing.T) {
	r := NewRegistry()
	r.RegisterBuiltin("ArrayObject", greeter{})

	if !r.IsBuiltin("ArrayObject") {
		t.Error("ArrayObject should be builtin")
	}
	r.Register("App\\Greeter", greeter{})
	if r.IsBuiltin("App\\Greeter") {
		t.Error("user registration should not be builtin")
	}
}

func TestBindAndInvoke(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	m, err := r.Bind("App\\Greeter", "Greet")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := m.Invoke("world")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != "Hello, world" {
		t.Errorf("result = %v", out)
	}
}

func TestBindLowercaseName(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	// Source-level method names are lower-cased; Bind maps them onto the
	// exported Go method.
	m, err := r.Bind("App\\Greeter", "greet")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := m.Invoke("go")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if out != "Hello, go" {
		t.Errorf("result = %v", out)
	}
}

func TestBindUnknown(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	if _, err := r.Bind("App\\Nope", "greet"); err == nil {
		t.Error("binding an unloaded class should fail")
	}
	if _, err := r.Bind("App\\Greeter", "nope"); err == nil {
		t.Error("binding an unknown method should fail")
	}
}

func TestInvokeMultipleResults(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	m, err := r.Bind("App\\Greeter", "pair")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	out, err := m.Invoke()
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	results, ok := out.([]interface{})
	if !ok || len(results) != 2 || results[0] != 1 || results[1] != 2 {
		t.Errorf("results = %#v", out)
	}
}

func TestInvokePanicBecomesError(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	m, err := r.Bind("App\\Greeter", "boom")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if _, err := m.Invoke(); err == nil {
		t.Error("panicking callee should surface as an error")
	}
}

func TestClosure(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	m, _ := r.Bind("App\\Greeter", "greet")
	fn := m.Closure()
	out, err := fn("closure")
	if err != nil || out != "Hello, closure" {
		t.Errorf("closure result = %v, %v", out, err)
	}
}

func TestMethodNames(t *testing.T) {
	r := NewRegistry()
	r.Register("App\\Greeter", greeter{})

	names := r.MethodNames("App\\Greeter")
	if len(names) != 3 {
		t.Errorf("method names = %v", names)
	}
}
