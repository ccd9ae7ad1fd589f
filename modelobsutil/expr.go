/*
Copyright © 2020 the ModelObs authors.
This file is part of ModelObs.

ModelObs is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ModelObs is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ModelObs.  If not, see <http://www.gnu.org/licenses/>.
*/

package modelobsutil

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"

	"github.com/spacemodel/modelobs"
)

// exprFunctions are the functions available in derived-variable
// expressions.
var exprFunctions = map[string]govaluate.ExpressionFunction{
	"exp": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("modelobs: got %d arguments for function 'exp', but needs 1", len(arg))
		}
		return math.Exp(arg[0].(float64)), nil
	},
	"log": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("modelobs: got %d arguments for function 'log', but needs 1", len(arg))
		}
		return math.Log(arg[0].(float64)), nil
	},
	"log10": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("modelobs: got %d arguments for function 'log10', but needs 1", len(arg))
		}
		return math.Log10(arg[0].(float64)), nil
	},
	"sqrt": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("modelobs: got %d arguments for function 'sqrt', but needs 1", len(arg))
		}
		return math.Sqrt(arg[0].(float64)), nil
	},
	"abs": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("modelobs: got %d arguments for function 'abs', but needs 1", len(arg))
		}
		return math.Abs(arg[0].(float64)), nil
	},
}

// Derive adds a variable named name to ds, calculated element-wise
// from the given expression of existing variables. All variables
// referenced in the expression must share the same shape, which the
// new variable inherits.
func Derive(ds *modelobs.Dataset, name, expression string) error {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, exprFunctions)
	if err != nil {
		return fmt.Errorf("modelobs: parsing expression for %s: %v", name, err)
	}
	var inputs []*modelobs.Variable
	var inputNames []string
	seen := make(map[string]bool)
	for _, v := range expr.Vars() {
		if seen[v] {
			continue
		}
		seen[v] = true
		in := ds.Var(v)
		if in == nil {
			return fmt.Errorf("modelobs: expression for %s references unknown variable %s", name, v)
		}
		inputs = append(inputs, in)
		inputNames = append(inputNames, v)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("modelobs: expression for %s references no variables", name)
	}
	first := inputs[0]
	for i, in := range inputs[1:] {
		if len(in.Data.Elements) != len(first.Data.Elements) {
			return fmt.Errorf("modelobs: expression for %s mixes variables of different shapes (%s and %s)",
				name, inputNames[0], inputNames[i+1])
		}
	}
	out := sparse.ZerosDense(first.Data.Shape...)
	params := make(map[string]interface{}, len(inputs))
	for i := range out.Elements {
		for j, in := range inputs {
			params[inputNames[j]] = in.Data.Elements[i]
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			return fmt.Errorf("modelobs: evaluating expression for %s: %v", name, err)
		}
		v, ok := result.(float64)
		if !ok {
			return fmt.Errorf("modelobs: expression for %s evaluates to %T; want float64", name, result)
		}
		out.Elements[i] = v
	}
	return ds.AddVar(name, &modelobs.Variable{Data: out, Dims: first.Dims})
}
