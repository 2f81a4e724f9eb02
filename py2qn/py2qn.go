package py2qn

// Copyright 2018 The go-python Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-python/gpython/py"

	"github.com/qbit-systems/go2qn/go2qn"
	"github.com/qbit-systems/go2qn/lib2qn"
	"github.com/qbit-systems/go2qn/lib2qn/catalog"
)

var (
	LIB_VERSION = "v1.2023.1"
)

var (
	pyNetType       = py.NewType("Net", "a network of two-qubit gates on a fixed set of qubit lines")
	pyNetStreamType = py.NewType("NetStream", "go2qn.NetStream")
	pyCatalogType   = py.NewType("Catalog", "go2qn.Catalog")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

func getNetFromObj(obj py.Object) (X pyNet, err error) {
	X, ok := obj.(pyNet)
	if !ok {
		err = py.ExceptionNewf(py.TypeError, "expected Net object (got %v)", obj.Type().Name)
	}
	return
}

func kwargInt32(kwargs py.StringDict, key string, dst *int32) error {
	v, ok := kwargs[key]
	if !ok {
		return nil
	}
	intVal, err := py.GetInt(v)
	if err != nil {
		return err
	}
	*dst = int32(intVal)
	return nil
}

func kwargByte(kwargs py.StringDict, key string, dst *byte) error {
	v, ok := kwargs[key]
	if !ok {
		return nil
	}
	intVal, err := py.GetInt(v)
	if err != nil {
		return err
	}
	if intVal < 0 || intVal > 255 {
		return py.ExceptionNewf(py.ValueError, "'%s' out of range: %d", key, intVal)
	}
	*dst = byte(intVal)
	return nil
}

func kwargBool(kwargs py.StringDict, key string, dst *bool) error {
	v, ok := kwargs[key]
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case py.Bool:
		*dst = bool(val)
	case py.Int:
		*dst = val != 0
	default:
		return py.ExceptionNewf(py.TypeError, "expected bool for '%s' (got %v)", key, v.Type().Name)
	}
	return nil
}

func kwargStr(kwargs py.StringDict, key string, dst *string) error {
	v, ok := kwargs[key]
	if !ok {
		return nil
	}
	strVal, isStr := v.(py.String)
	if !isStr {
		return py.ExceptionNewf(py.TypeError, "expected str for '%s' (got %v)", key, v.Type().Name)
	}
	*dst = string(strVal)
	return nil
}

func loadNetSelector(kwargs py.StringDict, sel *go2qn.NetSelector) error {
	if err := kwargByte(kwargs, "min_qubits", &sel.Min.NumQubits); err != nil {
		return err
	}
	if err := kwargByte(kwargs, "max_qubits", &sel.Max.NumQubits); err != nil {
		return err
	}
	if err := kwargByte(kwargs, "min_gates", &sel.Min.NumGates); err != nil {
		return err
	}
	if err := kwargByte(kwargs, "max_gates", &sel.Max.NumGates); err != nil {
		return err
	}
	return nil
}

type pyNet struct {
	*lib2qn.Net
}

func (X pyNet) Type() *py.Type {
	return pyNetType
}

func (X pyNet) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	X.WriteAsString(&writer, go2qn.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (X pyNet) M__repr__() (py.Object, error) {
	return X.M__str__()
}

// Arg 1 (int): qubit count
// Arg 2 (str): optional net expr, e.g. "0-1, 1-2"
func py_NewNet(module py.Object, args py.Tuple) (py.Object, error) {
	var qubits int32
	var netExpr string
	err := py.LoadTuple(args, []interface{}{&qubits, &netExpr})
	if err != nil {
		return nil, err
	}

	X, err := lib2qn.NewNetFromExpr(int(qubits), netExpr)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(pyNet{X}), nil
}

// Arg 1 (int): qubit count
func py_AllGates(module py.Object, args py.Tuple) (py.Object, error) {
	var qubits int32
	err := py.LoadTuple(args, []interface{}{&qubits})
	if err != nil {
		return nil, err
	}

	gates := go2qn.AllGates(int(qubits))
	if gates == nil {
		return nil, py.ExceptionNewf(py.ValueError, "invalid qubit count: %d", qubits)
	}

	out := make(py.Tuple, len(gates))
	for i, g := range gates {
		out[i] = py.Int(g)
	}
	return py.Object(out), nil
}

// EnumNets runs a full enumeration and streams the surviving networks of the
// final depth.
//
// Keyword args: qubits, depth, reverse, swap, max3, workers, seed
func py_EnumNets(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	var qubits, depth, workers int32
	var seedPath string

	if err := py.LoadTuple(args, []interface{}{&qubits, &depth}); err != nil {
		return nil, err
	}
	if err := kwargInt32(kwargs, "qubits", &qubits); err != nil {
		return nil, err
	}
	if err := kwargInt32(kwargs, "depth", &depth); err != nil {
		return nil, err
	}
	if err := kwargInt32(kwargs, "workers", &workers); err != nil {
		return nil, err
	}
	if err := kwargStr(kwargs, "seed", &seedPath); err != nil {
		return nil, err
	}

	crit := lib2qn.DefaultCriteria
	if err := kwargBool(kwargs, "reverse", &crit.TimeReversal); err != nil {
		return nil, err
	}
	if err := kwargBool(kwargs, "swap", &crit.SwapConjugate); err != nil {
		return nil, err
	}
	if err := kwargBool(kwargs, "max3", &crit.LimitRepeats); err != nil {
		return nil, err
	}

	opts := lib2qn.EnumOpts{
		QubitCount: int(qubits),
		Depth:      int(depth),
		Criteria:   crit,
		Workers:    int(workers),
	}

	if seedPath != "" {
		seed, err := lib2qn.LoadSeed(seedPath)
		if err != nil {
			return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
		}
		opts.Seed = seed
	}

	set, err := lib2qn.EnumerateNets(opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	return wrapNetStream(set.StreamAll()), nil
}

func py_Net_NumQubits(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	return py.Object(py.Int(X.QubitCount())), nil
}

func py_Net_NumGates(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	return py.Object(py.Int(X.GateCount())), nil
}

func py_Net_Gates(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)

	gates := X.Gates()
	out := make(py.Tuple, len(gates))
	for i, g := range gates {
		out[i] = py.Int(g)
	}
	return py.Object(out), nil
}

func py_Net_Expr(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	return py.String(X.ExprString()), nil
}

func py_Net_Sig(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	sig := X.Sig()
	return py.Bytes(append([]byte{}, sig...)), nil
}

func py_Net_GraphSig(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	return py.Bytes(X.AppendSigUnordered(nil)), nil
}

func py_Net_Canonize(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	if err := X.Canonize(); err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return self, nil
}

func py_Net_Reverse(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	X.Net.Reverse()
	return self, nil
}

func py_Net_Concat(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)

	for i, arg := range args {
		if initStr, isStr := arg.(py.String); isStr {
			Xi, err := lib2qn.NewNetFromExpr(X.QubitCount(), string(initStr))
			if err != nil {
				return nil, py.ExceptionNewf(py.ValueError, "error reading part %d: %v", i, err)
			}
			err = X.Concatenate(Xi)
			Xi.Reclaim()
			if err != nil {
				return nil, py.ExceptionNewf(py.ValueError, "%v", err)
			}
		} else {
			Xsrc, err := getNetFromObj(arg)
			if err != nil {
				return nil, err
			}
			if err = X.Concatenate(Xsrc.Net); err != nil {
				return nil, py.ExceptionNewf(py.ValueError, "%v", err)
			}
		}
	}

	return py.Object(X), nil
}

func py_Net_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyNet)
	next := go2qn.StreamNet(X)
	return wrapNetStream(next), nil
}

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx go2qn.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: go2qn.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

// Arg 1 (str): db pathname ("" for memory resident)
// Arg 2 (int): flags (READ_ONLY)
// Arg 3 (int): qubit count (0 adopts an existing catalog's count)
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags, qubitCount int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags, &qubitCount})
	if err != nil {
		return nil, err
	}

	opts := go2qn.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
		QubitCount: byte(qubitCount),
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	pyCat := pyCatalog{cat}
	return py.Object(pyCat), nil
}

type pyCatalog struct {
	go2qn.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

func py_Catalog_Select(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	cat := self.(pyCatalog)

	sel := go2qn.DefaultNetSelector
	if err := loadNetSelector(kwargs, &sel); err != nil {
		return nil, err
	}

	next := go2qn.SelectFromCatalog(cat, sel)
	return wrapNetStream(next), nil
}

func py_Catalog_NumNets(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "expected gate count")
	}
	forDepth, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}

	numNets := cat.NumNets(byte(forDepth))
	return py.Int(numNets), nil
}

func py_NetStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(netStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	var (
		n   int
		err error
	)
	if echo.to == nil {
		n, err = echo.stdout.Write(buf)
	} else {
		n, err = echo.to.Write(buf)
	}
	return n, err
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

var gOutCount = int32(0)

// Keyword args: label, grammar, codes, graph, file
func py_NetStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(netStream)
	var pathname string

	opts := go2qn.DefaultPrintOpts

	if err := py.LoadTuple(args, []interface{}{&opts.Label}); err != nil {
		return nil, err
	}
	if opts.Label == "" {
		if err := kwargStr(kwargs, "label", &opts.Label); err != nil {
			return nil, err
		}
	}

	// TODO: move this to the Workspace obj so output counter is within the workspace (vs global)
	atomic.AddInt32(&gOutCount, 1)
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", gOutCount)
	}

	if err := kwargBool(kwargs, "grammar", &opts.Grammar); err != nil {
		return nil, err
	}
	if err := kwargBool(kwargs, "codes", &opts.Codes); err != nil {
		return nil, err
	}
	if err := kwargBool(kwargs, "graph", &opts.Graph); err != nil {
		return nil, err
	}
	if err := kwargStr(kwargs, "file", &pathname); err != nil {
		return nil, err
	}

	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(pathname), 0700)

		file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}

	next := stream.Print(writer, opts)
	return wrapNetStream(next), nil
}

type netStream struct {
	*go2qn.NetStream
}

func (stream netStream) Type() *py.Type {
	return pyNetStreamType
}

func wrapNetStream(stream *go2qn.NetStream) py.Object {
	return py.Object(netStream{stream})
}

func py_NetStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(netStream)

	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object")
	}
	cat, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", errors.New("catalog is in read-only mode"))
	}

	next := stream.AddTo(cat)
	return wrapNetStream(next), nil
}

func py_NetStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(netStream)

	// Memory resident set that auto-closes when the stream drains
	dupes := lib2qn.NewSigSet()
	next := stream.DropDupes(dupes)
	return wrapNetStream(next), nil
}

func py_NetStream_Canonize(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(netStream)
	next := stream.Canonize()
	return wrapNetStream(next), nil
}

func py_NetStream_Reverse(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(netStream)
	next := stream.Reverse()
	return wrapNetStream(next), nil
}

func py_NetStream_Select(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(netStream)

	sel := go2qn.DefaultNetSelector
	if err := loadNetSelector(kwargs, &sel); err != nil {
		return nil, err
	}

	next := stream.SelectFromStream(sel)
	return wrapNetStream(next), nil
}

func init() {

	/////////////////////////////////
	// Net
	{
		pyNetType.Dict["Gates"] = py.MustNewMethod("Gates", py_Net_Gates, 0, "exports this net's gate codes as a tuple")
		pyNetType.Dict["NumQubits"] = py.MustNewMethod("NumQubits", py_Net_NumQubits, 0, "")
		pyNetType.Dict["NumGates"] = py.MustNewMethod("NumGates", py_Net_NumGates, 0, "")
		pyNetType.Dict["Expr"] = py.MustNewMethod("Expr", py_Net_Expr, 0, "")
		pyNetType.Dict["Sig"] = py.MustNewMethod("Sig", py_Net_Sig, 0, "exports this net's canonic signature as a bytes object")
		pyNetType.Dict["GraphSig"] = py.MustNewMethod("GraphSig", py_Net_GraphSig, 0, "exports this net's order-blind signature as a bytes object")
		pyNetType.Dict["Canonize"] = py.MustNewMethod("Canonize", py_Net_Canonize, 0, "")
		pyNetType.Dict["Reverse"] = py.MustNewMethod("Reverse", py_Net_Reverse, 0, "")
		pyNetType.Dict["Concat"] = py.MustNewMethod("Concat", py_Net_Concat, 0, "")
		pyNetType.Dict["Stream"] = py.MustNewMethod("Stream", py_Net_Stream, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["NumNets"] = py.MustNewMethod("NumNets", py_Catalog_NumNets, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	/////////////////////////////////
	// NetStream
	{
		pyNetStreamType.Dict["Go"] = py.MustNewMethod("Go", py_NetStream_Go, 0, "counts the number of nets output from the NetStream")
		pyNetStreamType.Dict["Print"] = py.MustNewMethod("Print", py_NetStream_Print, 0, "prints each net from the NetStream")
		pyNetStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", py_NetStream_AddTo, 0, "")
		pyNetStreamType.Dict["Canonize"] = py.MustNewMethod("Canonize", py_NetStream_Canonize, 0, "")
		pyNetStreamType.Dict["Reverse"] = py.MustNewMethod("Reverse", py_NetStream_Reverse, 0, "")
		pyNetStreamType.Dict["DropDupes"] = py.MustNewMethod("DropDupes", py_NetStream_DropDupes, 0, "")
		pyNetStreamType.Dict["Select"] = py.MustNewMethod("Select", py_NetStream_Select, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("NewNet", py_NewNet, 0, ""),
			py.MustNewMethod("AllGates", py_AllGates, 0, ""),
			py.MustNewMethod("EnumNets", py_EnumNets, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PY_VERSION":  py.String("v3.4.0"),
			"MAX_QUBITS":  py.Int(go2qn.MaxQubits),
			"MAX_DEPTH":   py.Int(go2qn.MaxDepth),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_py2qn",
				Doc:  "two-qubit gate network enumeration gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
