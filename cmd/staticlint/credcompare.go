// cmd/staticlint/credcompare.go
package main

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// credentialWords части имен, по которым значение считается секретом.
// nolint:gochecknoglobals
var credentialWords = []string{"password", "passwd", "secret", "token"}

// NoPlainCredentialCompare находит сравнение секретов через == и !=.
// Пароли проверяются через bcrypt, остальные секреты через subtle.ConstantTimeCompare.
// Сравнение с константой (например, проверка на пустую строку) допустимо. Тестовые файлы пропускаются.
// nolint:gochecknoglobals
var NoPlainCredentialCompare = &analysis.Analyzer{
	Name:     "noplaincredcompare",
	Doc:      "check for ==/!= comparison of passwords, secrets and tokens",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runNoPlainCredentialCompare,
}

func runNoPlainCredentialCompare(pass *analysis.Pass) (interface{}, error) {
	insp, _ := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.BinaryExpr)(nil)}, func(n ast.Node) {
		expr, _ := n.(*ast.BinaryExpr)
		if expr.Op != token.EQL && expr.Op != token.NEQ {
			return
		}
		if strings.HasSuffix(pass.Fset.Position(expr.Pos()).Filename, "_test.go") {
			return
		}
		if isConstant(pass, expr.X) || isConstant(pass, expr.Y) {
			return
		}
		if !isStringLike(pass, expr.X) {
			return
		}
		if name, ok := credentialName(expr.X); ok {
			pass.Reportf(expr.Pos(), "%s compared with %s: use a constant-time comparison", name, expr.Op)
			return
		}
		if name, ok := credentialName(expr.Y); ok {
			pass.Reportf(expr.Pos(), "%s compared with %s: use a constant-time comparison", name, expr.Op)
		}
	})
	return nil, nil //nolint:nilnil
}

func isConstant(pass *analysis.Pass, e ast.Expr) bool {
	tv, ok := pass.TypesInfo.Types[e]
	return ok && (tv.Value != nil || tv.IsNil())
}

func isStringLike(pass *analysis.Pass, e ast.Expr) bool {
	t := pass.TypesInfo.TypeOf(e)
	if t == nil {
		return false
	}
	basic, ok := t.Underlying().(*types.Basic)
	return ok && basic.Info()&types.IsString != 0
}

// credentialName возвращает имя переменной или поля, если оно похоже на секрет.
func credentialName(e ast.Expr) (string, bool) {
	var name string
	switch v := e.(type) {
	case *ast.Ident:
		name = v.Name
	case *ast.SelectorExpr:
		name = v.Sel.Name
	case *ast.ParenExpr:
		return credentialName(v.X)
	case *ast.StarExpr:
		return credentialName(v.X)
	case *ast.IndexExpr:
		return credentialName(v.X)
	default:
		return "", false
	}
	lower := strings.ToLower(name)
	for _, w := range credentialWords {
		if strings.Contains(lower, w) {
			return name, true
		}
	}
	return "", false
}
