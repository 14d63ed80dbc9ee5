package vm

// forEach runs the iteration contract over seq: GetEnumerator, then
// MoveNext/Current until MoveNext is false or body returns false, then
// Dispose, which also runs when the body fails.
func (vm *VM) forEach(seq Value, body func(Value) (bool, *VMError)) (vmErr *VMError) {
	en, vmErr := vm.callMethod(seq, "GetEnumerator", nil)
	if vmErr != nil {
		return vmErr
	}
	defer func() {
		if dErr := vm.dispose(en); dErr != nil && vmErr == nil {
			vmErr = dErr
		}
	}()
	for {
		more, vmErr := vm.moveNext(en)
		if vmErr != nil || !more {
			return vmErr
		}
		cur, vmErr := vm.getMember(en, "Current")
		if vmErr != nil {
			return vmErr
		}
		cont, vmErr := body(cur)
		if vmErr != nil || !cont {
			return vmErr
		}
	}
}

func (vm *VM) moveNext(en Value) (bool, *VMError) {
	v, vmErr := vm.callMethod(en, "MoveNext", nil)
	if vmErr != nil {
		return false, vmErr
	}
	if v.Kind != VKBool {
		return false, vm.eb.typeMismatch("bool from MoveNext", v.Kind.String())
	}
	return v.Bool, nil
}

// dispose calls Dispose when the enumerator has one.
func (vm *VM) dispose(en Value) *VMError {
	switch en.Kind {
	case VKObject:
		if _, m := vm.findMethod(en.Obj.Class, "Dispose", nil, false); m == nil && !en.Obj.yieldIterator {
			return nil
		}
	case VKNative:
	default:
		return nil
	}
	_, vmErr := vm.callMethod(en, "Dispose", nil)
	if vmErr != nil && vmErr.Code == PanicUnknownMember {
		return nil
	}
	return vmErr
}
