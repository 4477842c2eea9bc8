package expr

// Bindings maps identifiers to numeric values during evaluation.
type Bindings map[string]float64

// Compiled is an expression ready for repeated evaluation.
type Compiled interface {
	Evaluate(b Bindings) (float64, error)
}

// Engine compiles and validates expression text.
type Engine interface {
	// Compile parses text into an evaluable expression.
	Compile(text string) (Compiled, error)
	// Parse checks the syntax of text without retaining a result.
	Parse(text string) error
}

// Native is the built-in engine. The zero value is ready to use.
type Native struct{}

// NewNative returns the built-in engine.
func NewNative() *Native {
	return &Native{}
}

// Compile implements Engine.
func (Native) Compile(text string) (Compiled, error) {
	node, err := parse(text)
	if err != nil {
		return nil, err
	}
	return &program{source: text, root: node}, nil
}

// Parse implements Engine.
func (Native) Parse(text string) error {
	_, err := parse(text)
	return err
}

// Eval compiles and evaluates text in one step.
func Eval(e Engine, text string, b Bindings) (float64, error) {
	c, err := e.Compile(text)
	if err != nil {
		return 0, err
	}
	return c.Evaluate(b)
}

type program struct {
	source string
	root   node
}

func (p *program) Evaluate(b Bindings) (float64, error) {
	return p.root.eval(b)
}

func (p *program) String() string {
	return p.root.String()
}
