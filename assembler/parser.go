package assembler

import (
	"encoding/hex"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/sicxe/cpu"
)

// tokEOF is returned by peeks past the end of the token stream.
const tokEOF TokenKind = -1

// Parser builds a Program from a token stream.
type Parser struct {
	tokens []Token
	pos    int
	table  *cpu.Table
	log    logrus.FieldLogger
}

// NewParser returns a parser over tokens. A nil log uses the standard logger.
func NewParser(tokens []Token, table *cpu.Table, log logrus.FieldLogger) *Parser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{tokens: tokens, table: table, log: log}
}

// Parse builds the whole program.
func (p *Parser) Parse() (*Program, error) {
	prog := &Program{}
	for {
		p.skipEmptyLines()
		if p.eof(0) {
			return prog, nil
		}

		name := ""
		line := p.peek(0).Line
		if p.matchAfterLabel("CSECT") {
			var err error
			if name, line, err = p.parseSectionStart(); err != nil {
				return nil, err
			}
		}
		if prog.Section(name) != nil {
			return nil, semanticErr(line, name, "duplicate section name")
		}

		sec, err := p.parseSection(name, line)
		if err != nil {
			return nil, err
		}
		prog.Sections = append(prog.Sections, sec)
	}
}

// --- Token access ---

func (p *Parser) eof(n int) bool {
	return p.pos+n >= len(p.tokens)
}

func (p *Parser) at(i int) Token {
	if i >= len(p.tokens) {
		line := 1
		if len(p.tokens) > 0 {
			line = p.tokens[len(p.tokens)-1].Line
		}
		return Token{Kind: tokEOF, Line: line}
	}
	return p.tokens[i]
}

func (p *Parser) peek(n int) Token {
	return p.at(p.pos + n)
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	t := p.peek(0)
	if t.Kind != kind {
		return t, unexpected(t, kind.String())
	}
	p.pos++
	return t, nil
}

func (p *Parser) skipSpace() {
	for p.peek(0).Kind == TokWhitespace {
		p.pos++
	}
}

// isEmptyLine reports whether the rest of the current line holds only
// whitespace and comments.
func (p *Parser) isEmptyLine() bool {
	for n := 0; !p.eof(n); n++ {
		switch p.peek(n).Kind {
		case TokNewLine:
			return true
		case TokWhitespace, TokComment:
		default:
			return false
		}
	}
	return true
}

func (p *Parser) skipEmptyLines() {
	for !p.eof(0) && p.isEmptyLine() {
		for !p.eof(0) && p.peek(0).Kind != TokNewLine {
			p.pos++
		}
		if !p.eof(0) {
			p.pos++
		}
	}
}

// matchAfterLabel looks for [label] whitespace <directive>.
func (p *Parser) matchAfterLabel(directive string) bool {
	n := 0
	if p.peek(0).Kind == TokLabel {
		n++
	}
	if p.peek(n).Kind != TokWhitespace {
		return false
	}
	t := p.peek(n + 1)
	return t.Kind == TokDirective && t.Text == directive
}

// parseComment consumes [whitespace][comment] and the line end.
func (p *Parser) parseComment() (string, error) {
	p.skipSpace()
	comment := ""
	if p.peek(0).Kind == TokComment {
		comment = p.peek(0).Text
		p.pos++
	}
	if p.eof(0) {
		return comment, nil
	}
	_, err := p.expect(TokNewLine)
	return comment, err
}

// --- Sections and blocks ---

func (p *Parser) parseSectionStart() (string, int, error) {
	name := ""
	if p.peek(0).Kind == TokLabel {
		name = p.peek(0).Text
		p.pos++
	}
	if _, err := p.expect(TokWhitespace); err != nil {
		return "", 0, err
	}
	t, err := p.expect(TokDirective)
	if err != nil {
		return "", 0, err
	}
	_, err = p.parseComment()
	p.log.WithFields(logrus.Fields{"section": name, "line": t.Line}).Trace("section start")
	return name, t.Line, err
}

func (p *Parser) parseSection(name string, line int) (*Section, error) {
	sec := &Section{
		Name:    name,
		Line:    line,
		pending: make(map[string]Expr),
		lines:   make(map[string]int),
	}
	for {
		blockName := ""
		if p.matchAfterLabel("USE") {
			var err error
			if blockName, err = p.parseBlockStart(); err != nil {
				return nil, err
			}
		}
		if err := p.parseIntoBlock(sec.Block(blockName)); err != nil {
			return nil, err
		}
		if p.eof(0) || !p.matchAfterLabel("USE") {
			return sec, nil
		}
	}
}

// parseBlockStart parses whitespace USE [name]. USE takes no label.
func (p *Parser) parseBlockStart() (string, error) {
	if t := p.peek(0); t.Kind == TokLabel {
		return "", syntaxErr(t, "whitespace", "USE cannot carry a label")
	}
	if _, err := p.expect(TokWhitespace); err != nil {
		return "", err
	}
	if _, err := p.expect(TokDirective); err != nil {
		return "", err
	}
	name := ""
	if p.peek(0).Kind == TokWhitespace && p.peek(1).Kind == TokLabel {
		name = p.peek(1).Text
		p.pos += 2
	}
	_, err := p.parseComment()
	return name, err
}

func (p *Parser) parseIntoBlock(b *Block) error {
	for {
		p.skipEmptyLines()
		if p.eof(0) || p.matchAfterLabel("USE") || p.matchAfterLabel("CSECT") {
			return nil
		}
		cmd, err := p.parseCommand()
		if err != nil {
			return err
		}
		b.Commands = append(b.Commands, cmd)
	}
}

// --- Commands ---

func (p *Parser) parseCommand() (Command, error) {
	base := CommandBase{Line: p.peek(0).Line, Operand: NoOperand{}}
	if t := p.peek(0); t.Kind == TokLabel {
		base.Label = t.Text
		p.pos++
	}
	if _, err := p.expect(TokWhitespace); err != nil {
		return nil, err
	}

	extended := false
	if p.peek(0).Kind == TokPlus {
		extended = true
		p.pos++
	}

	t := p.peek(0)
	switch t.Kind {
	case TokInstruction:
		mn, _ := p.table.Instruction(t.Text)
		if extended && mn.Format != cpu.Format34 {
			return nil, syntaxErr(t, "memory instruction", "%s has no extended format", mn.Name)
		}
		p.pos++
		return p.parseInstruction(base, mn, extended)
	case TokDirective:
		if extended {
			return nil, syntaxErr(t, "instruction", "'+' before a directive")
		}
		d, _ := p.table.Directive(t.Text)
		p.pos++
		return p.parseDirective(base, d, t)
	}
	return nil, unexpected(t, "instruction or directive")
}

func (p *Parser) parseInstruction(base CommandBase, mn *cpu.InstructionMnemonic, extended bool) (*Instruction, error) {
	ins := &Instruction{CommandBase: base, Op: mn}
	if extended {
		ins.Flags = cpu.Simple | cpu.FlagExtended
	}

	var err error
	switch mn.Format {
	case cpu.Format1, cpu.Format3:
	case cpu.Format2Num:
		if _, err = p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		var n int
		if n, err = p.parseNumber(); err != nil {
			return nil, err
		}
		ins.Operand = &NumOperand{N: n}
	case cpu.Format2Reg, cpu.Format2RegNum, cpu.Format2RegReg:
		if _, err = p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		r1, err := p.parseRegister()
		if err != nil {
			return nil, err
		}
		if mn.Format == cpu.Format2Reg {
			ins.Operand = &RegOperand{R: r1}
			break
		}
		p.skipSpace()
		if _, err = p.expect(TokComma); err != nil {
			return nil, err
		}
		p.skipSpace()
		if mn.Format == cpu.Format2RegNum {
			n, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			ins.Operand = &RegNumOperand{R: r1, N: n}
			break
		}
		r2, err := p.parseRegister()
		if err != nil {
			return nil, err
		}
		ins.Operand = &RegRegOperand{R1: r1, R2: r2}
	case cpu.Format34:
		if _, err = p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		x, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ins.Operand = &ExprOperand{X: x}
		p.skipSpace()
		if p.peek(0).Kind == TokComma {
			p.pos++
			p.skipSpace()
			t := p.peek(0)
			if t.Kind != TokRegister || t.Text != "X" {
				return nil, unexpected(t, "register X")
			}
			p.pos++
			ins.Flags.Set(cpu.FlagIndexed, true)
		}
	}

	if ins.Comment, err = p.parseComment(); err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"line": ins.Line, "op": ins.Mnemonic(), "operand": ins.Operand.String()}).Trace("instruction")
	return ins, nil
}

func (p *Parser) parseDirective(base CommandBase, mn *cpu.DirectiveMnemonic, t Token) (*Directive, error) {
	d := &Directive{CommandBase: base, Op: mn}
	if mn.Kind == cpu.DirEqu && d.Label == "" {
		return nil, syntaxErr(t, "label", "EQU needs a label")
	}

	switch mn.Shape {
	case cpu.ShapeNone:
	case cpu.ShapeExpr, cpu.ShapeReserve:
		if mn.Kind == cpu.DirEnd && !p.hasOperand() {
			break
		}
		if _, err := p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		x, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		d.Operand = &ExprOperand{X: x}
	case cpu.ShapeSymbol:
		if _, err := p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		s, err := p.expect(TokLabel)
		if err != nil {
			return nil, err
		}
		d.Operand = &SymbolOperand{Name: s.Text}
	case cpu.ShapeSymbolList:
		if _, err := p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		var names []string
		for {
			s, err := p.expect(TokLabel)
			if err != nil {
				return nil, err
			}
			names = append(names, s.Text)
			p.skipSpace()
			if p.peek(0).Kind != TokComma {
				break
			}
			p.pos++
			p.skipSpace()
		}
		d.Operand = &SymbolListOperand{Names: names}
	case cpu.ShapeInitialize:
		if _, err := p.expect(TokWhitespace); err != nil {
			return nil, err
		}
		switch p.peek(0).Kind {
		case TokCharReservation, TokHexReservation:
			b, err := p.parseReservation()
			if err != nil {
				return nil, err
			}
			d.Operand = b
		default:
			x, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			d.Operand = &ExprOperand{X: x}
		}
	}

	var err error
	if d.Comment, err = p.parseComment(); err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"line": d.Line, "op": mn.Name, "operand": d.Operand.String()}).Trace("directive")
	return d, nil
}

// hasOperand reports whether anything but whitespace and a comment follows on this line.
func (p *Parser) hasOperand() bool {
	n := 0
	for p.peek(n).Kind == TokWhitespace {
		n++
	}
	switch p.peek(n).Kind {
	case TokComment, TokNewLine, tokEOF:
		return false
	}
	return true
}

// --- Operands ---

func (p *Parser) parseRegister() (cpu.Register, error) {
	t := p.peek(0)
	if t.Kind != TokRegister {
		return 0, unexpected(t, "register")
	}
	p.pos++
	r, _ := p.table.Register(t.Text)
	return r, nil
}

// parseNumber parses [-]number.
func (p *Parser) parseNumber() (int, error) {
	negative := false
	if p.peek(0).Kind == TokMinus {
		negative = true
		p.pos++
	}
	t := p.peek(0)
	n, err := numberValue(t)
	if err != nil {
		return 0, err
	}
	p.pos++
	if negative {
		n = -n
	}
	return n, nil
}

func numberValue(t Token) (int, error) {
	if !t.Kind.IsNumber() {
		return 0, unexpected(t, "number")
	}
	n, err := strconv.ParseInt(t.Digits(), t.Kind.Radix(), 32)
	if err != nil {
		return 0, syntaxErr(t, t.Kind.String(), "invalid number")
	}
	return int(n), nil
}

func (p *Parser) parseReservation() (*BytesOperand, error) {
	t := p.peek(0)
	body := t.Text[2 : len(t.Text)-1]
	op := &BytesOperand{Text: t.Text}
	if t.Kind == TokCharReservation {
		op.Bytes = []byte(body)
	} else {
		b, err := hex.DecodeString(body)
		if err != nil {
			return nil, syntaxErr(t, "hex digits", "invalid hex literal")
		}
		op.Bytes = b
	}
	if len(op.Bytes) == 0 {
		return nil, syntaxErr(t, "literal bytes", "empty literal")
	}
	p.pos++
	return op, nil
}

// --- Expressions ---

func isExprToken(k TokenKind) bool {
	switch k {
	case TokImmediate, TokIndirect, TokLiteral,
		TokNumberBin, TokNumberOct, TokNumberDec, TokNumberHex,
		TokMinus, TokPlus, TokAsterisk, TokSlash,
		TokOpenParen, TokCloseParen,
		TokWhitespace, TokLabel:
		return true
	}
	return false
}

// parseExpression takes the longest run of tokens that can belong to an
// expression and builds a tree from it.
func (p *Parser) parseExpression() (Expr, error) {
	start := p.pos
	for !p.eof(0) && isExprToken(p.peek(0).Kind) {
		p.pos++
	}
	if start == p.pos {
		return nil, unexpected(p.peek(0), "expression")
	}
	return p.buildExpr(start, p.pos, true)
}

// isOperandToken reports whether a token can stand next to a binary operator.
// A closing parenthesis ends a left operand and an opening one starts a right operand.
func isOperandToken(k TokenKind, left bool) bool {
	switch k {
	case TokImmediate, TokIndirect, TokLiteral,
		TokNumberBin, TokNumberOct, TokNumberDec, TokNumberHex,
		TokAsterisk, TokLabel:
		return true
	case TokCloseParen:
		return left
	case TokOpenParen:
		return !left
	}
	return false
}

// isMultiplication decides whether the '*' at i is an operator rather than
// the current-location symbol: both neighbours must be operands.
func (p *Parser) isMultiplication(i, start, end int) bool {
	l := i - 1
	for l >= start && p.tokens[l].Kind == TokWhitespace {
		l--
	}
	if l < start || !isOperandToken(p.tokens[l].Kind, true) {
		return false
	}
	r := i + 1
	for r < end && p.tokens[r].Kind == TokWhitespace {
		r++
	}
	return r < end && isOperandToken(p.tokens[r].Kind, false)
}

// buildExpr turns tokens[start:end] into a tree. Addressing prefixes bind
// loosest and are only allowed at the start of the whole operand; then the
// rightmost additive operator at depth zero splits the range, else the
// rightmost multiplicative one; else the outer parentheses are peeled.
func (p *Parser) buildExpr(start, end int, top bool) (Expr, error) {
	for start < end && p.tokens[start].Kind == TokWhitespace {
		start++
	}
	for end > start && p.tokens[end-1].Kind == TokWhitespace {
		end--
	}
	if start == end {
		return nil, unexpected(p.at(start), "operand")
	}
	if end-start == 1 {
		return p.leaf(p.tokens[start])
	}

	unary, additive, multiplicative := -1, -1, -1
	depth := 0
	for i := start; i < end; i++ {
		t := p.tokens[i]
		switch t.Kind {
		case TokOpenParen:
			depth++
			continue
		case TokCloseParen:
			depth--
			if depth < 0 {
				return nil, syntaxErr(t, "'('", "unbalanced parentheses")
			}
			continue
		}
		if depth > 0 {
			continue
		}
		switch t.Kind {
		case TokImmediate, TokIndirect, TokLiteral:
			if unary != -1 {
				return nil, syntaxErr(t, "", "more than one addressing prefix")
			}
			unary = i
		case TokPlus, TokMinus:
			additive = i
		case TokAsterisk:
			if p.isMultiplication(i, start, end) {
				multiplicative = i
			}
		case TokSlash:
			multiplicative = i
		}
	}
	if depth != 0 {
		return nil, syntaxErr(p.tokens[end-1], "')'", "unbalanced parentheses")
	}

	line := p.tokens[start].Line
	if unary != -1 {
		t := p.tokens[unary]
		if !top {
			return nil, syntaxErr(t, "", "addressing prefix inside an expression")
		}
		if unary != start {
			return nil, syntaxErr(t, "", "addressing prefix must start the operand")
		}
		x, err := p.buildExpr(start+1, end, false)
		if err != nil {
			return nil, err
		}
		ops := map[TokenKind]UnaryOp{TokImmediate: Immediate, TokIndirect: Indirect, TokLiteral: LiteralPool}
		return &UnaryExpr{exprBase: exprBase{line: line}, Op: ops[t.Kind], X: x}, nil
	}

	split := additive
	if split == -1 {
		split = multiplicative
	}
	if split != -1 {
		t := p.tokens[split]
		if split == start && (t.Kind == TokMinus || t.Kind == TokPlus) {
			return p.signed(t, start+1, end)
		}
		left, err := p.buildExpr(start, split, false)
		if err != nil {
			return nil, err
		}
		right, err := p.buildExpr(split+1, end, false)
		if err != nil {
			return nil, err
		}
		ops := map[TokenKind]BinaryOp{TokPlus: Add, TokMinus: Sub, TokAsterisk: Mul, TokSlash: Div}
		return &BinaryExpr{exprBase: exprBase{line: line}, Op: ops[t.Kind], Left: left, Right: right}, nil
	}

	if p.tokens[start].Kind == TokOpenParen && p.tokens[end-1].Kind == TokCloseParen {
		return p.buildExpr(start+1, end-1, top)
	}
	return nil, unexpected(p.tokens[start+1], "operator")
}

// signed handles a leading '+' or '-'. A minus in front of a single number
// is a negative literal; otherwise -E becomes 0 - E.
func (p *Parser) signed(sign Token, start, end int) (Expr, error) {
	x, err := p.buildExpr(start, end, false)
	if err != nil {
		return nil, err
	}
	if sign.Kind == TokPlus {
		return x, nil
	}
	if n, ok := x.(*NumericExpr); ok {
		n.Number = -n.Number
		return n, nil
	}
	zero := &NumericExpr{exprBase: exprBase{line: sign.Line}}
	return &BinaryExpr{exprBase: exprBase{line: sign.Line}, Op: Sub, Left: zero, Right: x}, nil
}

func (p *Parser) leaf(t Token) (Expr, error) {
	switch t.Kind {
	case TokLabel, TokAsterisk:
		return &SymbolExpr{exprBase: exprBase{line: t.Line}, Name: t.Text}, nil
	}
	if !t.Kind.IsNumber() {
		return nil, unexpected(t, "number or symbol")
	}
	n, err := numberValue(t)
	if err != nil {
		return nil, err
	}
	return &NumericExpr{exprBase: exprBase{line: t.Line}, Number: n}, nil
}
