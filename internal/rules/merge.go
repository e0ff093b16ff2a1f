package rules

// MergeFields copies a configured field subset from previously written
// rules into freshly generated ones. Rules are matched by name; fields
// not listed keep their freshly generated values. Set- and map-shaped
// fields are merged additively (old entries are added unless the fresh
// rule already carries the key); visibility is taken from the old rule
// wholesale since it is user-managed.
func MergeFields(existing []ParsedRule, fresh []Rule, fields []string) {
	if len(fields) == 0 {
		return
	}
	byName := make(map[string]ParsedRule, len(existing))
	for _, old := range existing {
		if name := old.Name(); name != "" {
			byName[name] = old
		}
	}
	for _, rule := range fresh {
		old, ok := byName[rule.RuleName()]
		if !ok {
			continue
		}
		for _, field := range fields {
			mergeField(rule, old, field)
		}
	}
}

func mergeField(fresh Rule, old ParsedRule, field string) {
	value, ok := old.Attrs[field]
	if !ok {
		return
	}
	compile, isCompile := fresh.(CompileRule)
	switch field {
	case "deps":
		if isCompile && value.Kind == ValueList {
			for _, dep := range value.List {
				compile.AddDep(dep)
			}
		}
	case "named_deps":
		if isCompile && value.Kind == ValueDict {
			c := compile.common()
			for name, label := range value.Dict {
				if _, taken := c.NamedDeps[name]; !taken {
					c.NamedDeps[name] = label
				}
			}
		}
	case "env":
		if isCompile && value.Kind == ValueDict {
			c := compile.common()
			for key, val := range value.Dict {
				if _, taken := c.Env[key]; !taken {
					c.Env[key] = val
				}
			}
		}
	case "rustc_flags":
		if isCompile && value.Kind == ValueList {
			for _, flag := range value.List {
				compile.AddFlag(flag)
			}
		}
	case "features":
		if isCompile && value.Kind == ValueList {
			c := compile.common()
			for _, feature := range value.List {
				c.Features.Add(feature)
			}
		}
	case "compatible_with":
		if isCompile && value.Kind == ValueList {
			compile.common().CompatibleWith = append([]string(nil), value.List...)
		}
	case "visibility":
		if value.Kind != ValueList {
			return
		}
		switch rule := fresh.(type) {
		case CompileRule:
			rule.common().Visibility = NewStringSet(value.List...)
		case *BuildscriptRun:
			rule.Visibility = NewStringSet(value.List...)
		case *Alias:
			rule.Visibility = NewStringSet(value.List...)
		}
	}
}
