package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Formula is a parsed arithmetic expression over context facets.
//
// Grammar (lowest precedence first):
//
//	cmp    = sum [ ("<" | ">" | "<=" | ">=" | "==" | "!=") sum ]
//	sum    = term { ("+" | "-") term }
//	term   = unary { ("*" | "/" | "%") unary }
//	unary  = "-" unary | power
//	power  = atom [ "^" unary ]
//	atom   = number | ident | ident "(" args ")" | "(" cmp ")"
//
// Comparisons yield 1 or 0.
type Formula struct {
	src    string
	root   node
	facets Facet
}

// ParseFormula compiles src. Unknown identifiers and functions are rejected.
func ParseFormula(src string) (*Formula, error) {
	p := &parser{src: src}
	if err := p.lex(); err != nil {
		return nil, err
	}
	root, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("expr: unexpected %q at offset %d in %q", p.toks[p.pos].text, p.toks[p.pos].off, src)
	}
	return &Formula{src: src, root: root, facets: p.facets}, nil
}

// String returns the source text.
func (f *Formula) String() string { return f.src }

func (f *Formula) Evaluate(ctx *Context) float64 {
	if ctx == nil {
		ctx = &Context{}
	}
	return f.root.eval(ctx)
}

func (f *Formula) UsesState() bool { return f.facets&FacetState != 0 }
func (f *Formula) UsesPos() bool   { return f.facets&FacetPos != 0 }
func (f *Formula) UsesBiome() bool { return f.facets&FacetBiome != 0 }
func (f *Formula) UsesItem() bool  { return f.facets&FacetItem != 0 }

// UsesParticle reports whether the formula reads the particle facet.
func (f *Formula) UsesParticle() bool { return f.facets&FacetParticle != 0 }

type node interface {
	eval(*Context) float64
}

type numNode float64

func (n numNode) eval(*Context) float64 { return float64(n) }

type varNode func(*Context) float64

func (v varNode) eval(c *Context) float64 { return v(c) }

type providerNode struct{ p Provider }

func (n providerNode) eval(c *Context) float64 { return n.p.Evaluate(c) }

type negNode struct{ x node }

func (n negNode) eval(c *Context) float64 { return -n.x.eval(c) }

type binNode struct {
	op   string
	l, r node
}

func (n binNode) eval(c *Context) float64 {
	a, b := n.l.eval(c), n.r.eval(c)
	switch n.op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		if b == 0 {
			return 0
		}
		return a / b
	case "%":
		if b == 0 {
			return 0
		}
		return math.Mod(a, b)
	case "^":
		return math.Pow(a, b)
	case "<":
		return boolf(a < b)
	case ">":
		return boolf(a > b)
	case "<=":
		return boolf(a <= b)
	case ">=":
		return boolf(a >= b)
	case "==":
		return boolf(a == b)
	case "!=":
		return boolf(a != b)
	}
	return 0
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

type callNode struct {
	fn   func(args []float64) float64
	args []node
}

func (n callNode) eval(c *Context) float64 {
	vals := make([]float64, len(n.args))
	for i, a := range n.args {
		vals[i] = a.eval(c)
	}
	return n.fn(vals)
}

type randNode struct{}

func (randNode) eval(c *Context) float64 { return c.random() }

type function struct {
	arity int // -1 means two or more
	fn    func([]float64) float64
}

var functions = map[string]function{
	"min":   {-1, func(a []float64) float64 { return fold(a, math.Min) }},
	"max":   {-1, func(a []float64) float64 { return fold(a, math.Max) }},
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"floor": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(math.Max(0, a[0])) }},
	"sin":   {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":   {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"clamp": {3, func(a []float64) float64 { return math.Max(a[1], math.Min(a[2], a[0])) }},
	"lerp":  {3, func(a []float64) float64 { return a[1] + (a[2]-a[1])*a[0] }},
	"step":  {2, func(a []float64) float64 { return boolf(a[1] >= a[0]) }},
}

func fold(a []float64, f func(x, y float64) float64) float64 {
	out := a[0]
	for _, v := range a[1:] {
		out = f(out, v)
	}
	return out
}

type variable struct {
	facet Facet
	get   func(*Context) float64
}

func particle(get func(*ParticleState) float64) variable {
	return variable{facet: FacetParticle, get: func(c *Context) float64 {
		if c.Particle == nil {
			return 0
		}
		return get(c.Particle)
	}}
}

func item(get func(*ItemStack) float64) variable {
	return variable{facet: FacetItem, get: func(c *Context) float64 {
		if c.Item == nil {
			return 0
		}
		return get(c.Item)
	}}
}

func pos(get func(*BlockPos) int) variable {
	return variable{facet: FacetPos, get: func(c *Context) float64 {
		if c.Pos == nil {
			return 0
		}
		return float64(get(c.Pos))
	}}
}

var variables = map[string]variable{
	"pi":         {get: func(*Context) float64 { return math.Pi }},
	"e":          {get: func(*Context) float64 { return math.E }},
	"x":          pos(func(p *BlockPos) int { return p.X }),
	"y":          pos(func(p *BlockPos) int { return p.Y }),
	"z":          pos(func(p *BlockPos) int { return p.Z }),
	"count":      item(func(i *ItemStack) float64 { return float64(i.Count) }),
	"damage":     item(func(i *ItemStack) float64 { return float64(i.Damage) }),
	"max_damage": item(func(i *ItemStack) float64 { return float64(i.MaxDamage) }),
	"age":        particle(func(p *ParticleState) float64 { return float64(p.Age) }),
	"lifetime":   particle(func(p *ParticleState) float64 { return float64(p.Lifetime) }),
	"px":         particle(func(p *ParticleState) float64 { return p.X }),
	"py":         particle(func(p *ParticleState) float64 { return p.Y }),
	"pz":         particle(func(p *ParticleState) float64 { return p.Z }),
	"dx":         particle(func(p *ParticleState) float64 { return p.DX }),
	"dy":         particle(func(p *ParticleState) float64 { return p.DY }),
	"dz":         particle(func(p *ParticleState) float64 { return p.DZ }),
	"red":        particle(func(p *ParticleState) float64 { return p.Red }),
	"green":      particle(func(p *ParticleState) float64 { return p.Green }),
	"blue":       particle(func(p *ParticleState) float64 { return p.Blue }),
	"alpha":      particle(func(p *ParticleState) float64 { return p.Alpha }),
	"size":       particle(func(p *ParticleState) float64 { return p.Size }),
	"roll":       particle(func(p *ParticleState) float64 { return p.Roll }),
	"custom":     particle(func(p *ParticleState) float64 { return p.Custom }),
}

type token struct {
	kind byte // 'n' number, 'i' ident, 'o' operator
	text string
	num  float64
	off  int
}

type parser struct {
	src    string
	toks   []token
	pos    int
	facets Facet
}

func (p *parser) lex() error {
	s := p.src
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || c == '.':
			j := i
			for j < len(s) && (unicode.IsDigit(rune(s[j])) || s[j] == '.') {
				j++
			}
			if j < len(s) && (s[j] == 'e' || s[j] == 'E') && j+1 < len(s) && (unicode.IsDigit(rune(s[j+1])) || s[j+1] == '-' || s[j+1] == '+') {
				j += 2
				for j < len(s) && unicode.IsDigit(rune(s[j])) {
					j++
				}
			}
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return fmt.Errorf("expr: bad number %q in %q", s[i:j], s)
			}
			p.toks = append(p.toks, token{kind: 'n', text: s[i:j], num: v, off: i})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(s) && (unicode.IsLetter(rune(s[j])) || unicode.IsDigit(rune(s[j])) || s[j] == '_' || s[j] == '.') {
				j++
			}
			p.toks = append(p.toks, token{kind: 'i', text: strings.ToLower(s[i:j]), off: i})
			i = j
		default:
			if i+1 < len(s) {
				two := s[i : i+2]
				if two == "<=" || two == ">=" || two == "==" || two == "!=" {
					p.toks = append(p.toks, token{kind: 'o', text: two, off: i})
					i += 2
					continue
				}
			}
			if !strings.ContainsRune("+-*/%^()<>,", c) {
				return fmt.Errorf("expr: unexpected character %q at offset %d in %q", c, i, s)
			}
			p.toks = append(p.toks, token{kind: 'o', text: string(c), off: i})
			i++
		}
	}
	if len(p.toks) == 0 {
		return fmt.Errorf("expr: empty formula")
	}
	return nil
}

func (p *parser) peek(ops ...string) (string, bool) {
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != 'o' {
		return "", false
	}
	for _, op := range ops {
		if p.toks[p.pos].text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) expect(op string) error {
	if _, ok := p.peek(op); !ok {
		return p.errorf("expected %q", op)
	}
	p.pos++
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	where := "end of input"
	if p.pos < len(p.toks) {
		where = fmt.Sprintf("%q at offset %d", p.toks[p.pos].text, p.toks[p.pos].off)
	}
	return fmt.Errorf("expr: %s near %s in %q", fmt.Sprintf(format, args...), where, p.src)
}

func (p *parser) parseCmp() (node, error) {
	l, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if op, ok := p.peek("<", ">", "<=", ">=", "==", "!="); ok {
		p.pos++
		r, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return binNode{op: op, l: l, r: r}, nil
	}
	return l, nil
}

func (p *parser) parseSum() (node, error) {
	l, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peek("+", "-")
		if !ok {
			return l, nil
		}
		p.pos++
		r, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		l = binNode{op: op, l: l, r: r}
	}
}

func (p *parser) parseTerm() (node, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peek("*", "/", "%")
		if !ok {
			return l, nil
		}
		p.pos++
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = binNode{op: op, l: l, r: r}
	}
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.peek("-"); ok {
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negNode{x: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if _, ok := p.peek("^"); ok {
		p.pos++
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binNode{op: "^", l: base, r: exp}, nil
	}
	return base, nil
}

func (p *parser) parseAtom() (node, error) {
	if p.pos >= len(p.toks) {
		return nil, p.errorf("unexpected end")
	}
	tok := p.toks[p.pos]
	switch tok.kind {
	case 'n':
		p.pos++
		return numNode(tok.num), nil
	case 'i':
		p.pos++
		if _, ok := p.peek("("); ok {
			return p.parseCall(tok)
		}
		return p.resolveIdent(tok)
	}
	if tok.text == "(" {
		p.pos++
		inner, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf("unexpected operator")
}

func (p *parser) parseCall(name token) (node, error) {
	p.pos++ // "("
	var args []node
	if _, ok := p.peek(")"); !ok {
		for {
			a, err := p.parseCmp()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if _, ok := p.peek(","); !ok {
				break
			}
			p.pos++
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if name.text == "rand" {
		if len(args) != 0 {
			return nil, fmt.Errorf("expr: rand takes no arguments in %q", p.src)
		}
		return randNode{}, nil
	}
	fn, ok := functions[name.text]
	if !ok {
		return nil, fmt.Errorf("expr: unknown function %q in %q", name.text, p.src)
	}
	if (fn.arity == -1 && len(args) < 2) || (fn.arity >= 0 && len(args) != fn.arity) {
		return nil, fmt.Errorf("expr: %s: wrong argument count %d in %q", name.text, len(args), p.src)
	}
	return callNode{fn: fn.fn, args: args}, nil
}

func (p *parser) resolveIdent(tok token) (node, error) {
	name := tok.text
	if b, ok := Lookup(name); ok {
		p.facets |= b.facets
		return providerNode{p: b}, nil
	}
	if v, ok := variables[name]; ok {
		p.facets |= v.facet
		return varNode(v.get), nil
	}
	if prop, ok := strings.CutPrefix(name, "state."); ok && prop != "" {
		p.facets |= FacetState
		return varNode(func(c *Context) float64 { return float64(c.State.Property(prop)) }), nil
	}
	if key, ok := strings.CutPrefix(name, "spawn."); ok && key != "" {
		return varNode(func(c *Context) float64 { return c.Spawn[key] }), nil
	}
	return nil, fmt.Errorf("expr: unknown identifier %q at offset %d in %q", name, tok.off, p.src)
}
