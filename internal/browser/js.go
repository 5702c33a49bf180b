package browser

// Evaluated page-side. Every snippet re-resolves the element from its
// selector, so handles stay valid across navigations within the same
// document and stale references cannot accumulate. A null return means
// the selector no longer matches.

const jsProbe = `(sel) => {
	try {
		return document.querySelector(sel) ? "found" : "missing";
	} catch (e) {
		return "bad";
	}
}`

const jsStyles = `(sel, props) => {
	const el = document.querySelector(sel);
	if (!el) return null;
	const cs = getComputedStyle(el);
	const out = {};
	for (const p of props) {
		out[p] = String(cs[p] ?? "");
	}
	return out;
}`

const jsPseudoStyles = `(sel, which, props) => {
	const el = document.querySelector(sel);
	if (!el) return null;
	const cs = getComputedStyle(el, which);
	const out = {};
	for (const p of props) {
		out[p] = String(cs[p] ?? "");
	}
	return out;
}`

const jsRef = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return null;
	const build = (node) => {
		const parts = [];
		let cur = node;
		while (cur && cur.nodeType === 1 && cur !== document.documentElement) {
			if (cur.id) {
				parts.unshift("#" + CSS.escape(cur.id));
				break;
			}
			let nth = 1;
			let sib = cur.previousElementSibling;
			while (sib) {
				if (sib.tagName === cur.tagName) nth++;
				sib = sib.previousElementSibling;
			}
			parts.unshift(cur.tagName.toLowerCase() + ":nth-of-type(" + nth + ")");
			cur = cur.parentElement;
		}
		return parts.length ? parts.join(" > ") : "html";
	};
	const rect = el.getBoundingClientRect();
	const attrs = {};
	for (const a of el.attributes) attrs[a.name] = a.value;
	const cs = getComputedStyle(el);
	return {
		selector: build(el),
		tag: el.tagName.toLowerCase(),
		rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height },
		id: el.id || "",
		classes: Array.from(el.classList),
		role: el.getAttribute("role") || "",
		aria_label: el.getAttribute("aria-label") || "",
		text: (el.innerText || "").trim().replace(/\s+/g, " ").slice(0, 80),
		cursor: cs.cursor,
		attrs: attrs,
	};
}`

const jsDescendants = `(sel, props, limit) => {
	const root = document.querySelector(sel);
	if (!root) return null;
	const seg = (node) => {
		const tag = node.tagName.toLowerCase();
		if (node.id) return tag + "#" + node.id;
		if (node.classList.length > 0) return tag + "." + node.classList[0];
		return tag;
	};
	const step = (node) => {
		if (node.id) return "#" + CSS.escape(node.id);
		let nth = 1;
		let sib = node.previousElementSibling;
		while (sib) {
			if (sib.tagName === node.tagName) nth++;
			sib = sib.previousElementSibling;
		}
		return node.tagName.toLowerCase() + ":nth-of-type(" + nth + ")";
	};
	const skip = new Set(["SCRIPT", "STYLE", "NOSCRIPT", "TEMPLATE", "META", "LINK", "TITLE"]);
	const out = [];
	const visit = (node, path, selPath) => {
		for (const child of node.children) {
			if (out.length >= limit) return;
			if (skip.has(child.tagName)) continue;
			const p = path ? path + ">" + seg(child) : seg(child);
			const s = child.id ? "#" + CSS.escape(child.id) : selPath + " > " + step(child);
			const cs = getComputedStyle(child);
			const rect = child.getBoundingClientRect();
			const styles = {};
			for (const prop of props) styles[prop] = String(cs[prop] ?? "");
			out.push({
				path: p,
				selector: s,
				tag: child.tagName.toLowerCase(),
				role: child.getAttribute("role") || "",
				aria_label: child.getAttribute("aria-label") || "",
				text: (child.innerText || "").trim().replace(/\s+/g, " ").slice(0, 80),
				rect: { x: rect.x, y: rect.y, width: rect.width, height: rect.height },
				hidden: cs.display === "none" || cs.visibility === "hidden",
				opacity: parseFloat(cs.opacity) || 0,
				styles: styles,
			});
			visit(child, p, s);
		}
	};
	visit(root, "", sel);
	return out;
}`

const jsMatches = `(sel, probe) => {
	const el = document.querySelector(sel);
	if (!el) return "missing";
	try {
		return el.matches(probe) ? "yes" : "no";
	} catch (e) {
		return "bad";
	}
}`

const jsOuterHTML = `(sel) => {
	const el = document.querySelector(sel);
	return el ? el.outerHTML : null;
}`

const jsStylesheets = `() => {
	const sheets = [];
	const collect = (list, rules) => {
		for (const r of list) {
			if (r.selectorText !== undefined && r.style) {
				const decls = [];
				for (let i = 0; i < r.style.length; i++) {
					const name = r.style[i];
					decls.push({
						property: name,
						value: r.style.getPropertyValue(name),
						important: r.style.getPropertyPriority(name) === "important",
					});
				}
				rules.push({ selector: r.selectorText, declarations: decls });
			} else if (r.cssRules) {
				collect(r.cssRules, rules);
			}
		}
	};
	for (const sheet of document.styleSheets) {
		const entry = { url: sheet.href || "", inline: !sheet.href, rules: [], blocked: false };
		try {
			collect(sheet.cssRules, entry.rules);
		} catch (e) {
			entry.blocked = true;
		}
		sheets.push(entry);
	}
	return sheets;
}`

const jsBlur = `(sel) => {
	const el = document.querySelector(sel);
	if (el && el.blur) el.blur();
	if (document.activeElement && document.activeElement !== document.body) {
		document.activeElement.blur();
	}
}`
