// cmd/staticlint/exitcheck.go
package main

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// NoDirectOsExit запрещает вызов os.Exit прямо в функции main пакета main:
// выход в обход main не дает отработать defer с закрытием хранилищ.
// Вызов распознается по типам, поэтому импорт os под другим именем тоже ловится.
// nolint:gochecknoglobals
var NoDirectOsExit = &analysis.Analyzer{
	Name:     "nodirectosexit",
	Doc:      "check for direct os.Exit calls in main function of package main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runNoDirectOsExit,
}

func runNoDirectOsExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil //nolint:nilnil
	}

	insp, _ := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		funcDecl, _ := n.(*ast.FuncDecl)
		if funcDecl.Name.Name != "main" || funcDecl.Recv != nil || funcDecl.Body == nil {
			return
		}

		ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
			// вызовы внутри замыканий выполняются не в main
			if _, isLit := n.(*ast.FuncLit); isLit {
				return false
			}
			callExpr, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if isOsExit(pass, callExpr) {
				pass.Reportf(callExpr.Pos(), "direct call os.Exit is not allowed in main function")
			}
			return true
		})
	})

	return nil, nil //nolint:nilnil
}

func isOsExit(pass *analysis.Pass, call *ast.CallExpr) bool {
	selExpr, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[selExpr.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
