package service

// scriptedClickJS dispatches mousedown and mouseup before a DOM click for
// pages whose handlers ignore synthetic clicks alone.
const scriptedClickJS = `(sel) => {
	const element = document.querySelector(sel);
	if (element) {
		element.dispatchEvent(new MouseEvent('mousedown', { bubbles: true }));
		element.dispatchEvent(new MouseEvent('mouseup', { bubbles: true }));
		element.click();
	}
}`

// scriptedTypeJS sets the value directly and replays the events a user's
// typing followed by Enter would have produced.
const scriptedTypeJS = `(arg) => {
	const element = document.querySelector(arg.selector);
	if (element) {
		element.value = arg.value;
		element.dispatchEvent(new Event('input', { bubbles: true }));
		element.dispatchEvent(new Event('change', { bubbles: true }));
		element.dispatchEvent(new KeyboardEvent('keydown', { key: 'Enter', code: 'Enter', bubbles: true }));
		element.dispatchEvent(new KeyboardEvent('keyup', { key: 'Enter', code: 'Enter', bubbles: true }));
	}
}`

const accessibilityJS = `() => {
	const clickable = document.querySelectorAll('a, button, [role="button"], input[type="submit"]');
	return Array.from(clickable).map(el => {
		const rect = el.getBoundingClientRect();
		return {
			tag: el.tagName,
			text: (el.textContent || '').trim(),
			isVisible: !!(rect.width && rect.height),
			href: el instanceof HTMLAnchorElement ? el.href : null,
			role: el.getAttribute('role'),
		};
	});
}`
